// Package fetcher 외부 API 호출에 쓰는 HTTP 클라이언트 미들웨어를 제공합니다.
//
// 기본 HTTP 클라이언트 위에 로깅, 재시도, 요청 속도 제한을 데코레이터로 겹쳐 씁니다.
//
//	f := fetcher.New(fetcher.Config{Timeout: 30 * time.Second, MaxRetries: 3, ...})
//	err := fetcher.FetchJSON(ctx, f, http.MethodGet, url, nil, nil, &out)
package fetcher

import (
	"context"
	"io"
	"net/http"
)

// component Fetcher 로깅용 컴포넌트 이름
const component = "fetcher"

// Fetcher HTTP 요청을 수행하는 인터페이스입니다.
//
// 반환된 응답의 Body는 호출자가 닫아야 합니다.
type Fetcher interface {
	Do(req *http.Request) (*http.Response, error)
}

// FetcherFunc 일반 함수를 Fetcher로 사용하게 해 주는 어댑터입니다.
type FetcherFunc func(req *http.Request) (*http.Response, error)

func (fn FetcherFunc) Do(req *http.Request) (*http.Response, error) { return fn(req) }

// Get 지정된 URL로 HTTP GET 요청을 전송합니다.
func Get(ctx context.Context, f Fetcher, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.Do(req)
	if err != nil {
		if resp != nil {
			drainAndCloseBody(resp.Body)
		}
		return nil, err
	}

	return resp, nil
}

// drainAndCloseBody 커넥션 재사용을 위해 남은 본문을 일정량까지 읽어 버리고 닫습니다.
func drainAndCloseBody(body io.ReadCloser) {
	if body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64*1024))
	_ = body.Close()
}
