package fetcher

import (
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimitFetcher 초당 요청 수를 제한하는 미들웨어입니다.
// 여러 고루틴이 하나의 인스턴스를 공유하면 전체 요청 속도가 제한됩니다.
type RateLimitFetcher struct {
	delegate Fetcher
	limiter  *rate.Limiter
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ Fetcher = (*RateLimitFetcher)(nil)

// NewRateLimitFetcher 초당 rps개, 순간 최대 burst개의 요청을 허용하는 RateLimitFetcher를 생성합니다.
// rps가 0 이하이면 제한하지 않고 delegate를 그대로 반환합니다.
func NewRateLimitFetcher(delegate Fetcher, rps float64, burst int) Fetcher {
	if rps <= 0 {
		return delegate
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimitFetcher{
		delegate: delegate,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (f *RateLimitFetcher) Do(req *http.Request) (*http.Response, error) {
	if err := f.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return f.delegate.Do(req)
}
