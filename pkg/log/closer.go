package log

import (
	"errors"
	"io"
	"sync/atomic"
)

// closer hook을 먼저 닫아 로그 유입을 막은 뒤 파일 Writer들을 모두 닫습니다.
// 여러 번 호출해도 안전합니다.
type closer struct {
	hook    *hook
	writers []io.Closer

	closed atomic.Bool
}

func (c *closer) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	if c.hook != nil {
		_ = c.hook.Close()
	}

	var errs error
	for _, w := range c.writers {
		if w == nil {
			continue
		}
		if s, ok := w.(interface{ Sync() error }); ok {
			_ = s.Sync()
		}
		if err := w.Close(); err != nil {
			errs = errors.Join(errs, err)
		}
	}

	return errs
}
