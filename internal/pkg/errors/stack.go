package errors

import (
	"path/filepath"
	"runtime"
)

// callerSkip runtime.Callers, captureStack, 그리고 공개 생성 함수(New/Wrap 등) 3단계를 건너뛰어
// 에러를 생성한 사용자 코드가 첫 번째 프레임이 되도록 합니다.
const callerSkip = 3

// maxStackDepth 에러마다 기록하는 최대 프레임 수입니다.
const maxStackDepth = 5

// StackFrame 호출 스택의 한 프레임입니다.
type StackFrame struct {
	File     string
	Line     int
	Function string
}

func captureStack(skip int) []StackFrame {
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(skip, pcs)
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	stack := make([]StackFrame, 0, n)
	for {
		f, more := frames.Next()
		stack = append(stack, StackFrame{
			File:     filepath.Base(f.File),
			Line:     f.Line,
			Function: f.Function,
		})
		if !more {
			break
		}
	}
	return stack
}
