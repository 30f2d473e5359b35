package log

import "github.com/sirupsen/logrus"

// WithComponent component 필드가 포함된 Entry를 반환합니다.
func WithComponent(component string) *Entry {
	return logrus.WithField("component", component)
}

// WithComponentAndFields component 필드와 추가 필드가 포함된 Entry를 반환합니다.
// fields의 "component" 키는 component 인자로 덮어씁니다.
func WithComponentAndFields(component string, fields Fields) *Entry {
	merged := make(Fields, len(fields)+1)
	for k, v := range fields {
		merged[k] = v
	}
	merged["component"] = component
	return logrus.WithFields(merged)
}

// SetDebugMode 디버그 모드이면 Trace, 아니면 Info 레벨로 전환합니다.
func SetDebugMode(debug bool) {
	if debug {
		logrus.SetLevel(TraceLevel)
		return
	}
	logrus.SetLevel(InfoLevel)
}

// StandardLogger 전역 logrus 로거를 반환합니다. 외부 라이브러리 어댑터에서 사용합니다.
func StandardLogger() *Logger {
	return logrus.StandardLogger()
}
