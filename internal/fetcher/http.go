package fetcher

import (
	"net/http"
	"time"
)

// HTTPFetcher net/http 클라이언트로 실제 요청을 보내는 가장 안쪽의 Fetcher입니다.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher 요청 전체 타임아웃과 기본 User-Agent를 가진 HTTPFetcher를 생성합니다.
func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 10

	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		userAgent: userAgent,
	}
}

func (f *HTTPFetcher) Do(req *http.Request) (*http.Response, error) {
	if f.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", f.userAgent)
	}
	return f.client.Do(req)
}
