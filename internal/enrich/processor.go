package enrich

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/darkkaiser/kaidoki-navi/internal/catalog"
	"github.com/darkkaiser/kaidoki-navi/internal/taxonomy"
	applog "github.com/darkkaiser/kaidoki-navi/pkg/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const defaultConcurrency = 4

// metadataFields 한 번의 Metadata 호출로 함께 생성되는 필드들
var metadataFields = catalog.NewFieldSet(catalog.Summary, catalog.Tags, catalog.CategoryField)

// Option Processor 동작을 조정합니다.
type Option func(*Processor)

// WithConcurrency 동시에 처리할 상품 수의 상한을 지정합니다.
func WithConcurrency(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithRateLimit 모든 작업자가 공유하는 초당 API 호출 수 상한을 지정합니다.
func WithRateLimit(rps float64) Option {
	return func(p *Processor) {
		if rps > 0 {
			p.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithTaxonomy 카테고리 결과를 매핑할 분류 체계를 지정합니다.
func WithTaxonomy(t *taxonomy.Taxonomy) Option {
	return func(p *Processor) {
		if t != nil {
			p.taxonomy = t
		}
	}
}

// Processor 작업 목록을 제한된 수의 작업자로 처리하고 결과를 Store에 반영합니다.
type Processor struct {
	gen         Generator
	taxonomy    *taxonomy.Taxonomy
	limiter     *rate.Limiter
	concurrency int
}

// NewProcessor 새 Processor를 생성합니다.
func NewProcessor(gen Generator, opts ...Option) *Processor {
	p := &Processor{
		gen:         gen,
		taxonomy:    taxonomy.Default(),
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Report Process의 처리 결과입니다.
type Report struct {
	// Requested 생성을 요청받은 필드 수
	Requested int

	// Calls Generator 호출 횟수
	Calls int

	Applied int
	Failed  []catalog.DerivedResult
}

// job 작업자에게 넘기는 레코드의 읽기 전용 스냅샷입니다.
type job struct {
	id          string
	name        string
	description string
	price       int
	history     []catalog.PricePoint
	main        string
	fields      catalog.FieldSet
}

// Process 작업 목록의 AI 필드를 생성하여 s에 반영합니다.
//
// 한 상품의 실패는 다른 상품에 영향을 주지 않으며, 실패한 필드는 기존 값을 유지합니다.
// 결과는 모든 작업자가 끝난 뒤 작업 목록 순서대로 반영되므로 s는 이 함수 안에서만 수정됩니다.
// 컨텍스트가 취소되면 아직 시작하지 않은 작업은 실패로 기록됩니다.
func (p *Processor) Process(ctx context.Context, s catalog.Store, work []catalog.Work) Report {
	var rep Report
	if len(work) == 0 {
		return rep
	}

	start := time.Now()
	results := make([][]catalog.DerivedResult, len(work))

	var calls atomic.Int64
	var g errgroup.Group
	g.SetLimit(p.concurrency)

	for i, w := range work {
		rec, ok := s[w.ID]
		if !ok {
			continue
		}
		rep.Requested += len(w.Fields.Fields())

		j := job{
			id:          rec.ID,
			name:        rec.Name,
			description: rec.Description,
			price:       rec.Price,
			history:     slices.Clone(rec.PriceHistory),
			main:        rec.Category.Main,
			fields:      w.Fields,
		}

		if err := ctx.Err(); err != nil {
			results[i] = failAll(j.id, j.fields, err)
			continue
		}

		g.Go(func() error {
			results[i] = p.run(ctx, j, &calls)
			return nil
		})
	}
	_ = g.Wait()

	var flat []catalog.DerivedResult
	for _, rs := range results {
		flat = append(flat, rs...)
	}

	applied := catalog.ApplyDerived(s, flat)
	rep.Calls = int(calls.Load())
	rep.Applied = applied.Applied
	rep.Failed = applied.Failed

	disabled := 0
	for _, f := range rep.Failed {
		if errors.Is(f.Err, ErrGeneratorDisabled) {
			disabled++
			continue
		}
		applog.WithComponentAndFields(component, applog.Fields{
			"product_id": f.ID,
			"field":      f.Field.String(),
			"error":      f.Err,
		}).Warn("AI 생성 실패: 기존 값을 유지합니다")
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"work_items":  len(work),
		"requested":   rep.Requested,
		"calls":       rep.Calls,
		"applied":     rep.Applied,
		"failed":      len(rep.Failed),
		"disabled":    disabled,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("AI 생성 처리 완료")

	return rep
}

func (p *Processor) run(ctx context.Context, j job, calls *atomic.Int64) []catalog.DerivedResult {
	var out []catalog.DerivedResult

	if meta := j.fields & metadataFields; !meta.Empty() {
		out = append(out, p.metadata(ctx, j, meta, calls)...)
	}
	if j.fields.Has(catalog.Analysis) {
		out = append(out, p.analysis(ctx, j, calls))
	}
	return out
}

func (p *Processor) metadata(ctx context.Context, j job, fields catalog.FieldSet, calls *atomic.Int64) []catalog.DerivedResult {
	if err := p.wait(ctx); err != nil {
		return failAll(j.id, fields, err)
	}

	calls.Add(1)
	m, err := p.gen.Metadata(ctx, MetadataInput{ID: j.id, Name: j.name, Description: j.description})
	if err != nil {
		return failAll(j.id, fields, err)
	}

	var out []catalog.DerivedResult
	for _, f := range fields.Fields() {
		res := catalog.DerivedResult{ID: j.id, Field: f}

		switch f {
		case catalog.Summary:
			if s := strings.TrimSpace(m.Summary); s != "" {
				res.Value.Summary = s
			} else {
				res.Err = NewErrDerivedContent(j.id, f, ErrEmptyContent)
			}
		case catalog.Tags:
			if tags := catalog.NormalizeTags(m.Tags); len(tags) > 0 {
				res.Value.Tags = tags
			} else {
				res.Err = NewErrDerivedContent(j.id, f, ErrEmptyContent)
			}
		case catalog.CategoryField:
			res.Value.Category = p.category(j, m.SubCategory)
		}

		out = append(out, res)
	}
	return out
}

// category AI가 제안한 서브 카테고리를 정의된 분류로 바꿉니다.
// 분류할 수 없으면 수집처가 지정한 메인 카테고리는 유지합니다.
func (p *Processor) category(j job, sub string) catalog.Category {
	c := p.taxonomy.Map(sub, j.name)
	if c.Main == catalog.UncategorizedMain && j.main != "" && j.main != catalog.UncategorizedMain {
		c.Main = j.main
	}
	return c
}

func (p *Processor) analysis(ctx context.Context, j job, calls *atomic.Int64) catalog.DerivedResult {
	res := catalog.DerivedResult{ID: j.id, Field: catalog.Analysis}

	if err := p.wait(ctx); err != nil {
		res.Err = NewErrDerivedContent(j.id, catalog.Analysis, err)
		return res
	}

	calls.Add(1)
	a, err := p.gen.Analysis(ctx, AnalysisInput{ID: j.id, Name: j.name, Price: j.price, History: j.history})
	if err != nil {
		res.Err = NewErrDerivedContent(j.id, catalog.Analysis, err)
		return res
	}

	headline, body := strings.TrimSpace(a.Headline), strings.TrimSpace(a.Analysis)
	if headline == "" || body == "" {
		res.Err = NewErrDerivedContent(j.id, catalog.Analysis, ErrEmptyContent)
		return res
	}

	res.Value.Headline = headline
	res.Value.Analysis = body
	return res
}

func (p *Processor) wait(ctx context.Context) error {
	if p.limiter == nil {
		return ctx.Err()
	}
	return p.limiter.Wait(ctx)
}

func failAll(id string, fields catalog.FieldSet, cause error) []catalog.DerivedResult {
	var out []catalog.DerivedResult
	for _, f := range fields.Fields() {
		out = append(out, catalog.DerivedResult{ID: id, Field: f, Err: NewErrDerivedContent(id, f, cause)})
	}
	return out
}
