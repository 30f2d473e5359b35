// Package pipeline 수집 → 병합 → AI 생성 → 저장 → 렌더링 → 보고로 이어지는 한 번의 실행을 조율합니다.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/darkkaiser/kaidoki-navi/internal/catalog"
	"github.com/darkkaiser/kaidoki-navi/internal/enrich"
	apperrors "github.com/darkkaiser/kaidoki-navi/internal/pkg/errors"
	"github.com/darkkaiser/kaidoki-navi/internal/render"
	"github.com/darkkaiser/kaidoki-navi/internal/source"
	"github.com/darkkaiser/kaidoki-navi/internal/store"
	applog "github.com/darkkaiser/kaidoki-navi/pkg/log"
	"github.com/google/uuid"
)

const component = "pipeline"

// Enricher 병합 결과의 작업 목록으로 AI 생성 필드를 채웁니다.
type Enricher interface {
	Process(ctx context.Context, s catalog.Store, work []catalog.Work) enrich.Report
}

// SiteRenderer 최종 Store로 정적 사이트를 생성합니다.
type SiteRenderer interface {
	Render(ctx context.Context, s catalog.Store) (render.Report, error)
}

// Reporter 실행 결과를 외부에 알립니다.
type Reporter interface {
	Report(ctx context.Context, summary Summary) error
}

// Deps Runner가 사용하는 협력자입니다. Enricher, Renderer, Reporter는 생략할 수 있습니다.
type Deps struct {
	Sources    []source.Source
	Repository store.Repository
	Enricher   Enricher
	Renderer   SiteRenderer
	Reporter   Reporter

	Location *time.Location
}

// Runner 파이프라인을 실행합니다. 동시에 하나의 실행만 진행됩니다.
type Runner struct {
	deps Deps
	now  func() time.Time

	mu sync.Mutex
}

// NewRunner 새 Runner를 생성합니다.
func NewRunner(deps Deps) *Runner {
	if deps.Location == nil {
		deps.Location = time.Local
	}
	return &Runner{deps: deps, now: time.Now}
}

// Run 파이프라인을 한 번 실행합니다.
//
// 수집처 실패, AI 생성 실패, 보고 실패는 로그만 남기고 계속 진행합니다.
// 저장소를 읽거나 쓰지 못하면 에러를 반환하며, 저장에 실패한 경우 렌더링과 보고는 하지 않습니다.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	started := r.now()
	sum := Summary{RunID: uuid.NewString(), StartedAt: started}
	today := catalog.DateOf(started.In(r.deps.Location))

	logger := applog.WithComponentAndFields(component, applog.Fields{
		"run_id": sum.RunID,
		"today":  today,
	})
	logger.Info("파이프라인 실행 시작")

	batch, fetchRep := source.FetchAll(ctx, r.deps.Sources)
	sum.Fetched = fetchRep.Fetched
	sum.FailedSources = fetchRep.Failed

	existing, err := r.deps.Repository.Load(ctx)
	if err != nil {
		return sum, apperrors.Wrap(err, apperrors.UnderlyingType(err), "저장소를 읽을 수 없어 실행을 중단합니다")
	}

	res := catalog.Reconcile(existing, batch, today)
	sum.Created = len(res.Created)
	sum.Updated = len(res.Updated)
	sum.Skipped = len(res.Skipped)
	sum.WorkItems = len(res.Work)
	sum.PriceChanges = len(res.PriceChanges)
	for _, c := range res.PriceChanges {
		if c.Dropped() {
			sum.PriceDrops = append(sum.PriceDrops, c)
		}
	}
	for _, skipped := range res.Skipped {
		logger.WithField("error", skipped).Warn("형식 오류 상품을 건너뜁니다")
	}

	if r.deps.Enricher != nil && len(res.Work) > 0 {
		rep := r.deps.Enricher.Process(ctx, res.Store, res.Work)
		sum.DerivedRequested = rep.Requested
		sum.DerivedApplied = rep.Applied
		sum.DerivedFailed = len(rep.Failed)
	}

	if err := r.deps.Repository.Save(ctx, res.Store); err != nil {
		return sum, apperrors.Wrap(err, apperrors.UnderlyingType(err), "저장소에 기록하지 못해 실행을 중단합니다")
	}
	sum.Total = len(res.Store)

	if r.deps.Renderer != nil {
		rendered, err := r.deps.Renderer.Render(ctx, res.Store)
		if err != nil {
			return sum, err
		}
		sum.RenderedFiles = rendered.Files
	}

	sum.Duration = r.now().Sub(started)

	logger.WithFields(sum.logFields()).Info("파이프라인 실행 완료")

	if r.deps.Reporter != nil {
		if err := r.deps.Reporter.Report(ctx, sum); err != nil {
			logger.WithField("error", err).Warn("실행 결과 보고 실패")
		}
	}

	return sum, nil
}

// Render 저장된 Store만으로 사이트를 다시 생성합니다. 수집이나 AI 생성은 하지 않습니다.
func (r *Runner) Render(ctx context.Context) (render.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.deps.Renderer == nil {
		return render.Report{}, apperrors.New(apperrors.InvalidInput, "렌더러가 설정되지 않았습니다")
	}

	s, err := r.deps.Repository.Load(ctx)
	if err != nil {
		return render.Report{}, err
	}
	return r.deps.Renderer.Render(ctx, s)
}
