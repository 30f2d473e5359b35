// Package source 외부 쇼핑몰 API에서 상품 목록을 수집하는 수집처(Source)를 정의합니다.
//
// 각 수집처 구현은 하위 패키지(rakuten, yahoo)에 있으며 init 시점에 기본 Registry에 등록됩니다.
package source

import (
	"context"
	"time"

	"github.com/darkkaiser/kaidoki-navi/internal/catalog"
	applog "github.com/darkkaiser/kaidoki-navi/pkg/log"
)

const component = "source"

// Source 상품 목록을 수집하는 수집처입니다.
type Source interface {
	ID() string
	Fetch(ctx context.Context) ([]catalog.RawItem, error)
}

// Validator 설정 데이터의 유효성을 스스로 검증하는 인터페이스입니다.
type Validator interface {
	Validate() error
}

// FetchReport FetchAll의 수집 결과 통계입니다.
type FetchReport struct {
	Fetched int
	Failed  []string
}

// FetchAll 모든 수집처에서 상품을 수집하여 하나의 배치로 합칩니다.
//
// 실패한 수집처는 로그를 남기고 건너뜁니다. 컨텍스트가 취소되면 남은 수집처는 호출하지 않습니다.
func FetchAll(ctx context.Context, sources []Source) ([]catalog.RawItem, FetchReport) {
	var (
		batch []catalog.RawItem
		rep   FetchReport
	)

	for _, src := range sources {
		if ctx.Err() != nil {
			rep.Failed = append(rep.Failed, src.ID())
			continue
		}

		start := time.Now()
		items, err := src.Fetch(ctx)
		if err != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"source_id": src.ID(),
				"error":     err,
			}).Error("수집 실패: 해당 수집처를 건너뜁니다")

			rep.Failed = append(rep.Failed, src.ID())
			batch = append(batch, items...)
			continue
		}

		applog.WithComponentAndFields(component, applog.Fields{
			"source_id":   src.ID(),
			"items":       len(items),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("수집 완료")

		batch = append(batch, items...)
	}

	rep.Fetched = len(batch)
	return batch, rep
}
