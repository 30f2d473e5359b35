package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/darkkaiser/kaidoki-navi/internal/pkg/errors"
	"golang.org/x/net/html/charset"
)

// DefaultMaxBodyBytes 응답 본문의 기본 크기 제한 (10MB)
const DefaultMaxBodyBytes int64 = 10 * 1024 * 1024

// FetchBytes 요청을 보내고 2xx 응답의 본문을 UTF-8로 변환하여 반환합니다.
//
// body가 있으면 재시도 시 다시 보낼 수 있도록 GetBody가 설정됩니다.
// Content-Type의 charset이 UTF-8이 아니면(예: Shift_JIS, EUC-JP) UTF-8로 변환합니다.
func FetchBytes(ctx context.Context, f Fetcher, method, url string, header map[string]string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	// bytes.Reader 본문이면 http.NewRequest가 GetBody를 설정합니다.
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Internal, "HTTP 요청 생성에 실패했습니다")
	}
	for key, value := range header {
		req.Header.Set(key, value)
	}

	resp, err := f.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Unavailable, fmt.Sprintf("API(%s) 요청 전송 중 에러가 발생했습니다", RedactURL(req.URL)))
	}
	defer resp.Body.Close()

	if err := CheckResponseStatus(resp); err != nil {
		return nil, err
	}

	utf8Reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ParsingFailed, fmt.Sprintf("응답(%s)의 인코딩 변환에 실패했습니다", RedactURL(req.URL)))
	}

	data, err := io.ReadAll(io.LimitReader(utf8Reader, DefaultMaxBodyBytes+1))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Unavailable, fmt.Sprintf("응답(%s) 본문을 읽는 중 에러가 발생했습니다", RedactURL(req.URL)))
	}
	if int64(len(data)) > DefaultMaxBodyBytes {
		return nil, newErrResponseBodyTooLarge(DefaultMaxBodyBytes)
	}

	return data, nil
}

// FetchJSON FetchBytes로 받은 본문을 v로 디코딩합니다.
func FetchJSON(ctx context.Context, f Fetcher, method, url string, header map[string]string, body []byte, v any) error {
	data, err := FetchBytes(ctx, f, method, url, header, body)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, v); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return apperrors.Wrap(err, apperrors.ParsingFailed, fmt.Sprintf("응답이 올바른 JSON이 아닙니다 (offset %d)", syntaxErr.Offset))
		}
		return apperrors.Wrap(err, apperrors.ParsingFailed, "응답 JSON을 변환하는 데 실패했습니다")
	}
	return nil
}
