package fetcher

import "time"

// Config Fetcher 체인 구성 설정입니다.
type Config struct {
	Timeout    time.Duration
	UserAgent  string
	MaxRetries int
	RetryDelay time.Duration
	MaxDelay   time.Duration

	// RequestsPerSecond 0이면 속도를 제한하지 않습니다.
	RequestsPerSecond float64

	// RetryUnsafeMethods POST 요청도 재시도합니다.
	RetryUnsafeMethods bool
}

// New 설정에 따라 속도 제한 → 재시도 → 로깅 → HTTP 순서로 감싼 Fetcher를 생성합니다.
// 속도 제한이 가장 바깥에 있으므로 재시도 요청도 호출자가 본 한 번의 요청으로 취급됩니다.
func New(cfg Config) Fetcher {
	var f Fetcher = NewHTTPFetcher(cfg.Timeout, cfg.UserAgent)
	f = NewLoggingFetcher(f)

	var opts []RetryOption
	if cfg.RetryUnsafeMethods {
		opts = append(opts, WithRetryUnsafeMethods())
	}
	f = NewRetryFetcher(f, cfg.MaxRetries, cfg.RetryDelay, cfg.MaxDelay, opts...)

	return NewRateLimitFetcher(f, cfg.RequestsPerSecond, 1)
}
