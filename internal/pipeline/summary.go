package pipeline

import (
	"time"

	"github.com/darkkaiser/kaidoki-navi/internal/catalog"
	applog "github.com/darkkaiser/kaidoki-navi/pkg/log"
)

// Summary 한 번의 실행 결과입니다.
type Summary struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration

	Fetched       int
	FailedSources []string

	Created      int
	Updated      int
	Skipped      int
	WorkItems    int
	PriceChanges int
	PriceDrops   []catalog.PriceChange

	DerivedRequested int
	DerivedApplied   int
	DerivedFailed    int

	// Total 저장된 전체 상품 수
	Total         int
	RenderedFiles int
}

func (s Summary) logFields() applog.Fields {
	return applog.Fields{
		"fetched":           s.Fetched,
		"failed_sources":    len(s.FailedSources),
		"created":           s.Created,
		"updated":           s.Updated,
		"skipped":           s.Skipped,
		"work_items":        s.WorkItems,
		"price_changes":     s.PriceChanges,
		"price_drops":       len(s.PriceDrops),
		"derived_requested": s.DerivedRequested,
		"derived_failed":    s.DerivedFailed,
		"total":             s.Total,
		"rendered_files":    s.RenderedFiles,
		"duration_ms":       s.Duration.Milliseconds(),
	}
}
