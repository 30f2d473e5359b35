// Package log logrus 기반의 애플리케이션 로깅을 제공합니다.
//
// 호출 측은 logrus를 직접 import하지 않고 이 패키지의 별칭 타입과 헬퍼를 사용합니다.
// 실제 출력은 Setup에서 등록하는 hook이 레벨에 따라 main / critical / verbose 파일과
// 콘솔로 나누어 기록합니다.
package log

import "github.com/sirupsen/logrus"

// Level logrus.Level의 별칭입니다.
type Level = logrus.Level

const (
	PanicLevel Level = logrus.PanicLevel
	FatalLevel Level = logrus.FatalLevel
	ErrorLevel Level = logrus.ErrorLevel
	WarnLevel  Level = logrus.WarnLevel
	InfoLevel  Level = logrus.InfoLevel
	DebugLevel Level = logrus.DebugLevel
	TraceLevel Level = logrus.TraceLevel
)

// AllLevels logrus.AllLevels의 별칭입니다.
var AllLevels = logrus.AllLevels

type (
	Fields    = logrus.Fields
	Entry     = logrus.Entry
	Logger    = logrus.Logger
	Formatter = logrus.Formatter
)

// ParseLevel 설정 파일의 레벨 문자열("info", "debug" 등)을 Level로 변환합니다.
func ParseLevel(s string) (Level, error) {
	return logrus.ParseLevel(s)
}
