package log

import (
	"fmt"
	"os"
)

// Options 로거 설정입니다.
type Options struct {
	Name  string // 로그 파일명 접두사 (예: "kaidoki-navi" -> kaidoki-navi.log)
	Dir   string // 로그 디렉토리 (빈 값이면 "logs")
	Level Level

	MaxAge     int // 보관 일수 (0: 삭제 안 함)
	MaxSizeMB  int // 파일당 최대 크기 (0: 100MB)
	MaxBackups int // 최대 백업 파일 수 (0: 20개)

	EnableCriticalLog bool // ERROR 이상을 <name>.critical.log 에 추가로 기록
	EnableVerboseLog  bool // DEBUG 이하를 <name>.verbose.log 에만 기록
	EnableConsoleLog  bool // 모든 레벨을 표준 출력에도 기록

	ReportCaller     bool
	CallerPathPrefix string // 호출자 함수 경로에서 잘라낼 접두사
}

// Validate 옵션 값의 범위를 검사합니다.
func (o *Options) Validate() error {
	if o.Name == "" {
		return fmt.Errorf("로그 파일 이름(Name)이 설정되지 않았습니다")
	}

	if o.Dir != "" {
		if fi, err := os.Stat(o.Dir); err == nil && !fi.IsDir() {
			return fmt.Errorf("로그 디렉토리 경로(%s)가 파일로 존재합니다", o.Dir)
		}
	}

	limits := []struct {
		name  string
		value int
	}{
		{"MaxAge", o.MaxAge},
		{"MaxSizeMB", o.MaxSizeMB},
		{"MaxBackups", o.MaxBackups},
	}
	for _, l := range limits {
		if l.value < 0 {
			return fmt.Errorf("%s는 0 이상이어야 합니다: %d", l.name, l.value)
		}
	}

	return nil
}

// NewProductionOptions cron 배치 실행에 맞춘 설정을 반환합니다.
func NewProductionOptions(appName string) Options {
	return Options{
		Name:              appName,
		Level:             InfoLevel,
		MaxAge:            30,
		MaxSizeMB:         100,
		MaxBackups:        20,
		EnableCriticalLog: true,
		EnableVerboseLog:  true,
		EnableConsoleLog:  false,
		ReportCaller:      true,
		CallerPathPrefix:  "github.com/darkkaiser",
	}
}

// NewDevelopmentOptions 로컬 개발용 설정을 반환합니다. 모든 로그가 콘솔에도 출력됩니다.
func NewDevelopmentOptions(appName string) Options {
	return Options{
		Name:             appName,
		Level:            TraceLevel,
		MaxAge:           1,
		MaxSizeMB:        50,
		MaxBackups:       5,
		EnableConsoleLog: true,
		ReportCaller:     true,
		CallerPathPrefix: "github.com/darkkaiser",
	}
}
