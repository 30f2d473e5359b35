package fetcher

import (
	"net/http"
	"time"

	applog "github.com/darkkaiser/kaidoki-navi/pkg/log"
)

// LoggingFetcher 요청 메서드, 마스킹된 URL, 상태 코드, 소요 시간을 로그로 남기는 미들웨어입니다.
type LoggingFetcher struct {
	delegate Fetcher
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ Fetcher = (*LoggingFetcher)(nil)

// NewLoggingFetcher 새로운 LoggingFetcher 인스턴스를 생성합니다.
func NewLoggingFetcher(delegate Fetcher) *LoggingFetcher {
	return &LoggingFetcher{delegate: delegate}
}

func (f *LoggingFetcher) Do(req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := f.delegate.Do(req)

	fields := applog.Fields{
		"method":   req.Method,
		"url":      RedactURL(req.URL),
		"duration": time.Since(start).String(),
	}
	if resp != nil {
		fields["status_code"] = resp.StatusCode
	}

	if err != nil {
		fields["error"] = err.Error()
		applog.WithComponentAndFields(component, fields).Warn("HTTP 요청 실패")

		return resp, err
	}

	applog.WithComponentAndFields(component, fields).Debug("HTTP 요청 완료")

	return resp, nil
}
