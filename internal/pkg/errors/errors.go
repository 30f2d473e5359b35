// Package errors 애플리케이션 전역에서 사용하는 타입 기반 에러를 제공합니다.
//
// 모든 에러는 ErrorType으로 분류되며 Wrap을 통해 컨텍스트를 누적합니다.
// 호출자는 Is로 분류를 검사하고, 로그에는 %+v로 스택과 원인 체인을 남깁니다.
//
//	if err := st.Save(ctx, records); err != nil {
//	    return errors.Wrap(err, errors.System, "상품 저장소 기록에 실패했습니다")
//	}
//
//	if errors.Is(err, errors.ParsingFailed) {
//	    // 손상된 저장소 처리
//	}
//
// # Wrap 시 타입 선택
//
// 원인이 AppError라면 보통 같은 타입을 유지하고 메시지만 덧붙입니다.
// 외부 라이브러리 에러라면 발생 계층에 맞춰 고릅니다.
// 입력 계층은 InvalidInput, 외부 API 호출은 ExecutionFailed 또는 Unavailable,
// 파일 시스템은 System, 데이터 디코딩은 ParsingFailed 입니다.
package errors

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// AppError 분류 타입, 메시지, 원인 에러와 생성 위치의 스택을 함께 보관하는 에러입니다.
type AppError struct {
	errType ErrorType
	message string
	cause   error
	stack   []StackFrame
}

// Type 에러의 분류 타입을 반환합니다.
func (e *AppError) Type() ErrorType { return e.errType }

// Message 원인 에러를 제외한 메시지를 반환합니다.
func (e *AppError) Message() string { return e.message }

// Stack 에러 생성 시점의 스택 프레임을 반환합니다.
func (e *AppError) Stack() []StackFrame { return e.stack }

func (e *AppError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("[%s] %s", e.errType, e.message)
	}
	return fmt.Sprintf("[%s] %s: %v", e.errType, e.message, e.cause)
}

func (e *AppError) Unwrap() error { return e.cause }

// Format %+v 형식에서는 에러 체인과 스택을 여러 줄로 출력합니다.
//
// 스택은 체인의 가장 안쪽 AppError(또는 외부 에러를 감싼 AppError)에서만 출력하여
// 같은 위치가 여러 번 반복되지 않도록 합니다.
func (e *AppError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			fmt.Fprintf(s, "[%s] %s", e.errType, e.message)

			var inner *AppError
			if e.cause == nil || !errors.As(e.cause, &inner) {
				writeStack(s, e.stack)
			}

			if e.cause != nil {
				io.WriteString(s, "\nCaused by:\n")
				if f, ok := e.cause.(fmt.Formatter); ok {
					f.Format(s, verb)
				} else {
					fmt.Fprintf(s, "\t%v", e.cause)
				}
			}
			return
		}
		io.WriteString(s, e.Error())
	case 's':
		io.WriteString(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}

func writeStack(w io.Writer, stack []StackFrame) {
	if len(stack) == 0 {
		return
	}

	io.WriteString(w, "\nStack trace:")
	for _, f := range stack {
		fn := f.Function
		if i := strings.LastIndex(fn, "/"); i != -1 {
			fn = fn[i+1:]
		}
		fmt.Fprintf(w, "\n\t%s:%d %s", f.File, f.Line, fn)
	}
}

// New 새로운 에러를 생성합니다.
func New(errType ErrorType, message string) error {
	return &AppError{errType: errType, message: message, stack: captureStack(callerSkip)}
}

// Newf 포맷 문자열로 메시지를 구성하여 새로운 에러를 생성합니다.
func Newf(errType ErrorType, format string, args ...any) error {
	return &AppError{errType: errType, message: fmt.Sprintf(format, args...), stack: captureStack(callerSkip)}
}

// Wrap 원인 에러에 분류와 메시지를 덧붙입니다. err이 nil이면 nil을 반환합니다.
func Wrap(err error, errType ErrorType, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{errType: errType, message: message, cause: err, stack: captureStack(callerSkip)}
}

// Wrapf 포맷 문자열을 사용하는 Wrap입니다.
func Wrapf(err error, errType ErrorType, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &AppError{errType: errType, message: fmt.Sprintf(format, args...), cause: err, stack: captureStack(callerSkip)}
}

// Is 에러 체인 안에 주어진 분류의 AppError가 하나라도 있는지 확인합니다.
func Is(err error, errType ErrorType) bool {
	for ; err != nil; err = errors.Unwrap(err) {
		if appErr, ok := err.(*AppError); ok && appErr.errType == errType {
			return true
		}
	}
	return false
}

// As 표준 errors.As와 동일합니다.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// RootCause 체인의 가장 안쪽 에러를 반환합니다.
func RootCause(err error) error {
	for err != nil {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
	return nil
}

// UnderlyingType 체인에서 가장 안쪽에 있는 AppError의 분류를 반환합니다.
// AppError가 없으면 Unknown 입니다.
//
//	err := Wrap(New(ParsingFailed, "잘못된 CSV"), System, "저장소 로드 실패")
//	UnderlyingType(err) // ParsingFailed
func UnderlyingType(err error) ErrorType {
	t := Unknown
	for ; err != nil; err = errors.Unwrap(err) {
		if appErr, ok := err.(*AppError); ok {
			t = appErr.errType
		}
	}
	return t
}
