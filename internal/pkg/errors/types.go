package errors

import "strconv"

// ErrorType 에러를 성격에 따라 분류하는 타입입니다.
type ErrorType int

const (
	// Unknown 분류되지 않은 에러 (기본값)
	Unknown ErrorType = iota

	// Internal 내부 로직 오류
	Internal

	// System 디스크, 네트워크 등 실행 환경의 오류
	System

	// InvalidInput 설정값이나 입력 데이터가 올바르지 않음
	InvalidInput

	// Conflict 상태 충돌
	Conflict

	// NotFound 대상이 존재하지 않음
	NotFound

	// ExecutionFailed 외부 API 호출 등 작업 실행 실패
	ExecutionFailed

	// ParsingFailed 데이터 파싱 또는 형식 변환 실패
	ParsingFailed

	// Timeout 작업 시간 초과
	Timeout

	// Unavailable 외부 서비스 일시적 사용 불가
	Unavailable
)

var errorTypeNames = [...]string{
	Unknown:         "Unknown",
	Internal:        "Internal",
	System:          "System",
	InvalidInput:    "InvalidInput",
	Conflict:        "Conflict",
	NotFound:        "NotFound",
	ExecutionFailed: "ExecutionFailed",
	ParsingFailed:   "ParsingFailed",
	Timeout:         "Timeout",
	Unavailable:     "Unavailable",
}

// String ErrorType의 이름을 반환합니다. 정의되지 않은 값은 "ErrorType(n)" 형태로 표시합니다.
func (t ErrorType) String() string {
	if t < 0 || int(t) >= len(errorTypeNames) {
		return "ErrorType(" + strconv.Itoa(int(t)) + ")"
	}
	return errorTypeNames[t]
}
