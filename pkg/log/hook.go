package log

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// hook 하나의 로그 이벤트를 레벨에 따라 여러 Writer로 분배합니다.
//
//   - console : 모든 레벨
//   - critical: ERROR 이상
//   - verbose : DEBUG 이하 (이 경우 main에는 기록하지 않음)
//   - main    : INFO 이상
type hook struct {
	main     io.Writer
	critical io.Writer
	verbose  io.Writer
	console  io.Writer

	formatter Formatter

	mu     sync.RWMutex
	closed bool
}

func (h *hook) Levels() []Level {
	return AllLevels
}

func (h *hook) Fire(entry *Entry) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return nil
	}

	msg, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}

	// 콘솔 출력 실패는 로깅 자체를 실패로 보지 않습니다.
	if h.console != nil {
		if _, err := h.console.Write(msg); err != nil {
			fmt.Fprintf(os.Stderr, "[log] 콘솔 출력 실패: %v\n", err)
		}
	}

	var firstErr error
	write := func(w io.Writer, name string) {
		if w == nil {
			return
		}
		if _, err := w.Write(msg); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			fmt.Fprintf(os.Stderr, "[log] %s 로그 파일 쓰기 실패: %v\n", name, err)
		}
	}

	if entry.Level <= ErrorLevel {
		write(h.critical, "critical")
	}

	if entry.Level >= DebugLevel {
		write(h.verbose, "verbose")
		return firstErr
	}

	write(h.main, "main")

	return firstErr
}

// Close 이후의 모든 Fire 호출을 무시하도록 전환합니다.
// 진행 중인 Fire가 끝날 때까지 대기합니다.
func (h *hook) Close() error {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()

	return nil
}
