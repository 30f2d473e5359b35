// Package notify 파이프라인 실행 결과와 실패를 운영자에게 알립니다.
package notify

import (
	"context"

	"github.com/darkkaiser/kaidoki-navi/internal/config"
	"github.com/darkkaiser/kaidoki-navi/internal/pipeline"
	"github.com/darkkaiser/kaidoki-navi/internal/scheduler"
)

// component 알림 로깅용 컴포넌트 이름
const component = "notify"

// Notifier 실행 결과 보고와 실패 알림을 함께 담당합니다.
type Notifier interface {
	pipeline.Reporter
	scheduler.ErrorReporter
}

// New 설정에 맞는 Notifier를 생성합니다. 텔레그램이 비활성화되어 있으면 Noop을 반환합니다.
func New(cfg config.TelegramConfig, siteName string) (Notifier, error) {
	if !cfg.Enabled {
		return Noop{}, nil
	}
	return NewTelegram(cfg, siteName)
}

// Noop 아무것도 보내지 않는 Notifier입니다.
type Noop struct{}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ Notifier = Noop{}

func (Noop) Report(context.Context, pipeline.Summary) error { return nil }

func (Noop) ReportError(context.Context, error) error { return nil }
