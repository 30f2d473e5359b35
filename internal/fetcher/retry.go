package fetcher

import (
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	applog "github.com/darkkaiser/kaidoki-navi/pkg/log"
)

const (
	maxAllowedRetries = 10

	defaultMinRetryDelay = time.Second
	defaultMaxRetryDelay = 30 * time.Second
)

// RetryFetcher 일시적인 실패(네트워크 오류, 408, 429, 5xx)에 대해 요청을 재시도하는 미들웨어입니다.
//
// 재시도 간격은 지수 백오프에 Full Jitter를 적용하며, 서버가 Retry-After 헤더를 주면 그 값을 따릅니다.
// Retry-After가 최대 대기 시간보다 길면 재시도하지 않고 에러를 반환합니다.
// POST, PATCH는 WithRetryUnsafeMethods로 명시적으로 허용한 경우에만 재시도합니다.
type RetryFetcher struct {
	delegate Fetcher

	maxRetries    int
	minRetryDelay time.Duration
	maxRetryDelay time.Duration

	retryUnsafeMethods bool
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ Fetcher = (*RetryFetcher)(nil)

// RetryOption RetryFetcher 생성 옵션입니다.
type RetryOption func(*RetryFetcher)

// WithRetryUnsafeMethods 비멱등 메서드(POST, PATCH)도 재시도합니다.
// 같은 요청이 두 번 처리되어도 문제가 없는 API(예: 생성형 AI 호출)에만 사용합니다.
func WithRetryUnsafeMethods() RetryOption {
	return func(f *RetryFetcher) { f.retryUnsafeMethods = true }
}

// NewRetryFetcher 재시도 횟수와 대기 시간 범위를 정규화하여 RetryFetcher를 생성합니다.
func NewRetryFetcher(delegate Fetcher, maxRetries int, minRetryDelay, maxRetryDelay time.Duration, opts ...RetryOption) *RetryFetcher {
	maxRetries = max(0, min(maxRetries, maxAllowedRetries))
	if minRetryDelay <= 0 {
		minRetryDelay = defaultMinRetryDelay
	}
	if maxRetryDelay <= 0 {
		maxRetryDelay = defaultMaxRetryDelay
	}
	if maxRetryDelay < minRetryDelay {
		maxRetryDelay = minRetryDelay
	}

	f := &RetryFetcher{
		delegate:      delegate,
		maxRetries:    maxRetries,
		minRetryDelay: minRetryDelay,
		maxRetryDelay: maxRetryDelay,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *RetryFetcher) Do(req *http.Request) (*http.Response, error) {
	retries := f.maxRetries
	if !f.retryUnsafeMethods && !isIdempotentMethod(req.Method) {
		retries = 0
	}

	// 본문을 다시 만들 수 없으면 재시도할 수 없습니다.
	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil && retries > 0 {
		applog.WithComponentAndFields(component, applog.Fields{
			"url":    RedactURL(req.URL),
			"method": req.Method,
		}).Warn("재시도 비활성화: 요청 본문 재생성 불가 (GetBody nil)")

		retries = 0
	}

	var (
		lastErr  error
		lastResp *http.Response
	)

	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			delay, err := f.nextDelay(attempt, lastResp)
			if err != nil {
				drainAndCloseBody(bodyOf(lastResp))
				return nil, err
			}

			fields := applog.Fields{
				"url":   RedactURL(req.URL),
				"retry": attempt,
				"delay": delay.String(),
			}
			if lastErr != nil {
				fields["error"] = lastErr.Error()
			}
			if lastResp != nil {
				fields["status_code"] = lastResp.StatusCode
			}
			applog.WithComponentAndFields(component, fields).Warn("일시적 오류로 요청을 재시도합니다")

			drainAndCloseBody(bodyOf(lastResp))
			lastResp = nil

			if err := sleepContext(req.Context(), delay); err != nil {
				return nil, err
			}

			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, newErrGetBodyFailed(err)
				}
				req = req.Clone(req.Context())
				req.Body = body
			}
		}

		resp, err := f.delegate.Do(req)
		if err != nil {
			if req.Context().Err() != nil || !isRetriableError(err) {
				drainAndCloseBody(bodyOf(resp))
				return nil, err
			}
			lastErr, lastResp = err, nil
			continue
		}

		if !isRetriableStatus(resp.StatusCode) {
			return resp, nil
		}
		lastErr, lastResp = nil, resp
	}

	if lastResp != nil {
		statusErr := CheckResponseStatus(lastResp)
		drainAndCloseBody(lastResp.Body)

		var httpErr *HTTPStatusError
		if errors.As(statusErr, &httpErr) {
			httpErr.Cause = errors.Join(ErrMaxRetriesExceeded, httpErr.Cause)
		}
		return nil, statusErr
	}

	return nil, newErrMaxRetriesExceeded(lastErr)
}

// nextDelay attempt번째 재시도 전 대기 시간을 계산합니다.
func (f *RetryFetcher) nextDelay(attempt int, lastResp *http.Response) (time.Duration, error) {
	if lastResp != nil {
		if d, ok := parseRetryAfter(lastResp.Header.Get("Retry-After")); ok {
			if d > f.maxRetryDelay {
				return 0, newErrRetryAfterExceeded(d.String(), f.maxRetryDelay.String())
			}
			return d, nil
		}
	}

	delay := f.minRetryDelay << (attempt - 1)
	if delay > f.maxRetryDelay || delay <= 0 {
		delay = f.maxRetryDelay
	}

	delay = time.Duration(rand.Int64N(int64(delay) + 1))
	if delay < time.Millisecond {
		delay = f.minRetryDelay
	}
	return delay, nil
}

// parseRetryAfter 초 단위 숫자 또는 HTTP 날짜 형식의 Retry-After 값을 해석합니다.
func parseRetryAfter(v string) (time.Duration, bool) {
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	if t, err := http.ParseTime(v); err == nil {
		return max(0, time.Until(t)), true
	}
	return 0, false
}

func isIdempotentMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// isRetriableError 호출자가 취소한 경우를 제외한 전송 계층 에러(클라이언트 타임아웃 포함)는 재시도 대상으로 봅니다.
func isRetriableError(err error) bool {
	return !errors.Is(err, context.Canceled)
}

func bodyOf(resp *http.Response) io.ReadCloser {
	if resp == nil {
		return nil
	}
	return resp.Body
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
