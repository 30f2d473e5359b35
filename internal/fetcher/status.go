package fetcher

import (
	"fmt"
	"io"
	"net/http"
	"slices"

	apperrors "github.com/darkkaiser/kaidoki-navi/internal/pkg/errors"
)

// bodySnippetLimit 에러에 포함하는 응답 본문 앞부분의 최대 크기입니다.
const bodySnippetLimit = 4096

// HTTPStatusError HTTP 요청 실패 시 상태 코드와 응답 정보를 포함하는 에러입니다.
// URL과 헤더의 민감 정보는 마스킹되어 있습니다.
type HTTPStatusError struct {
	StatusCode  int
	Status      string
	URL         string
	Header      http.Header
	BodySnippet string

	// Cause 상태 코드에 대응하는 분류의 AppError
	Cause error
}

func (e *HTTPStatusError) Error() string {
	msg := fmt.Sprintf("HTTP %d (%s)", e.StatusCode, e.Status)
	if e.URL != "" {
		msg += fmt.Sprintf(" URL: %s", e.URL)
	}
	if e.BodySnippet != "" {
		msg += fmt.Sprintf(", Body: %s", e.BodySnippet)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *HTTPStatusError) Unwrap() error { return e.Cause }

// CheckResponseStatus 응답 상태 코드가 허용 목록(기본: 2xx)에 없으면 HTTPStatusError를 반환합니다.
// 에러를 반환할 때 본문 앞부분을 읽어 에러에 포함합니다. Body를 닫는 것은 호출자의 몫입니다.
func CheckResponseStatus(resp *http.Response, allowed ...int) error {
	if len(allowed) == 0 {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
	} else if slices.Contains(allowed, resp.StatusCode) {
		return nil
	}

	var snippet string
	if resp.Body != nil {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, bodySnippetLimit))
		snippet = string(b)
	}

	reqURL := ""
	if resp.Request != nil {
		reqURL = RedactURL(resp.Request.URL)
	}

	return &HTTPStatusError{
		StatusCode:  resp.StatusCode,
		Status:      http.StatusText(resp.StatusCode),
		URL:         reqURL,
		Header:      redactHeaders(resp.Header),
		BodySnippet: snippet,
		Cause:       apperrors.New(errorTypeForStatus(resp.StatusCode), "HTTP 요청이 실패했습니다"),
	}
}

// errorTypeForStatus 상태 코드를 에러 분류로 변환합니다.
func errorTypeForStatus(code int) apperrors.ErrorType {
	switch {
	case code == http.StatusNotFound:
		return apperrors.NotFound
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return apperrors.Timeout
	case code == http.StatusTooManyRequests || code >= 500:
		return apperrors.Unavailable
	case code >= 400:
		return apperrors.InvalidInput
	default:
		return apperrors.ExecutionFailed
	}
}

// isRetriableStatus 일시적인 장애를 나타내는 상태 코드인지 확인합니다.
// 501, 505, 511은 영구적인 문제로 봅니다.
func isRetriableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusRequestTimeout:
		return true
	case http.StatusNotImplemented, http.StatusHTTPVersionNotSupported, http.StatusNetworkAuthenticationRequired:
		return false
	}
	return code >= 500
}
