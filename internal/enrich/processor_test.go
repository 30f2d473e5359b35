package enrich_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/darkkaiser/kaidoki-navi/internal/catalog"
	"github.com/darkkaiser/kaidoki-navi/internal/enrich"
	"github.com/darkkaiser/kaidoki-navi/internal/enrich/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const today catalog.Date = "2024-01-02"

func newStore(t *testing.T, items ...catalog.RawItem) (catalog.Store, []catalog.Work) {
	t.Helper()

	res := catalog.Reconcile(catalog.Store{}, items, today)
	require.Empty(t, res.Skipped)
	return res.Store, res.Work
}

func TestProcess_AppliesAllFields(t *testing.T) {
	s, work := newStore(t, catalog.RawItem{ID: "A", Name: "薄型 テレビ 50型", Price: "1,000", CategoryHint: "家電"})

	gen := &mocks.MockGenerator{}
	gen.On("Metadata", mock.Anything, enrich.MetadataInput{ID: "A", Name: "薄型 テレビ 50型"}).
		Return(enrich.Metadata{Summary: " 最安値の薄型テレビ ", Tags: []string{"#テレビ", "セール", "テレビ"}, SubCategory: "テレビ"}, nil).Once()
	gen.On("Analysis", mock.Anything, mock.MatchedBy(func(in enrich.AnalysisInput) bool {
		return in.ID == "A" && in.Price == 1000 && len(in.History) == 1
	})).Return(enrich.Analysis{Headline: "買い時", Analysis: "初登場価格です。"}, nil).Once()

	rep := enrich.NewProcessor(gen).Process(context.Background(), s, work)

	gen.AssertExpectations(t)
	assert.Equal(t, 4, rep.Requested)
	assert.Equal(t, 2, rep.Calls)
	assert.Equal(t, 4, rep.Applied)
	assert.Empty(t, rep.Failed)

	rec := s["A"]
	assert.Equal(t, "最安値の薄型テレビ", rec.Summary)
	assert.Equal(t, []string{"テレビ", "セール"}, rec.Tags)
	assert.Equal(t, catalog.Category{Main: "家電", Sub: "テレビ"}, rec.Category)
	assert.Equal(t, "買い時", rec.Headline)
	assert.Equal(t, "初登場価格です。", rec.Analysis)
}

func TestProcess_MetadataFailureKeepsSentinels(t *testing.T) {
	s, work := newStore(t, catalog.RawItem{ID: "A", Name: "X", Price: "500", CategoryHint: "家電"})

	gen := &mocks.MockGenerator{}
	gen.On("Metadata", mock.Anything, mock.Anything).Return(enrich.Metadata{}, errors.New("timeout"))
	gen.On("Analysis", mock.Anything, mock.Anything).Return(enrich.Analysis{Headline: "h", Analysis: "a"}, nil)

	rep := enrich.NewProcessor(gen).Process(context.Background(), s, work)

	assert.Equal(t, 1, rep.Applied)
	require.Len(t, rep.Failed, 3)
	for _, f := range rep.Failed {
		assert.Equal(t, "A", f.ID)
		assert.True(t, enrich.IsDerivedContent(f.Err))
	}

	rec := s["A"]
	assert.Empty(t, rec.Summary)
	assert.Nil(t, rec.Tags)
	assert.Equal(t, catalog.Category{Main: "家電"}, rec.Category)
	assert.Equal(t, "h", rec.Headline)

	// 다음 실행에서 실패한 필드만 다시 생성 대상이 됩니다.
	next := catalog.Reconcile(s, []catalog.RawItem{{ID: "A", Name: "X", Price: "500", CategoryHint: "家電"}}, today)
	require.Len(t, next.Work, 1)
	assert.Equal(t, catalog.NewFieldSet(catalog.Summary, catalog.Tags), next.Work[0].Fields)
}

func TestProcess_EmptyContentIsFailure(t *testing.T) {
	s, work := newStore(t, catalog.RawItem{ID: "A", Name: "X", Price: "500"})

	gen := &mocks.MockGenerator{}
	gen.On("Metadata", mock.Anything, mock.Anything).Return(enrich.Metadata{Summary: "  ", Tags: []string{" "}}, nil)
	gen.On("Analysis", mock.Anything, mock.Anything).Return(enrich.Analysis{Headline: "h"}, nil)

	rep := enrich.NewProcessor(gen).Process(context.Background(), s, work)

	assert.Equal(t, 1, rep.Applied)
	failed := make(map[catalog.FieldKind]bool)
	for _, f := range rep.Failed {
		failed[f.Field] = true
		assert.ErrorIs(t, f.Err, enrich.ErrEmptyContent)
	}
	assert.Equal(t, map[catalog.FieldKind]bool{catalog.Summary: true, catalog.Tags: true, catalog.Analysis: true}, failed)

	// 분류할 수 없는 상품은 その他로 매핑됩니다.
	assert.Equal(t, catalog.Category{Main: "その他", Sub: "その他"}, s["A"].Category)
}

func TestProcess_UncategorizedKeepsSourceMain(t *testing.T) {
	s, work := newStore(t, catalog.RawItem{ID: "A", Name: "ボールペン", Price: "100", CategoryHint: "美容・健康"})

	gen := &mocks.MockGenerator{}
	gen.On("Metadata", mock.Anything, mock.Anything).Return(enrich.Metadata{Summary: "s", Tags: []string{"t"}, SubCategory: "文房具"}, nil)
	gen.On("Analysis", mock.Anything, mock.Anything).Return(enrich.Analysis{Headline: "h", Analysis: "a"}, nil)

	enrich.NewProcessor(gen).Process(context.Background(), s, work)
	assert.Equal(t, catalog.Category{Main: "美容・健康", Sub: "その他"}, s["A"].Category)
}

func TestProcess_OnlyRequestedCalls(t *testing.T) {
	s, _ := newStore(t, catalog.RawItem{ID: "A", Name: "X", Price: "500"})

	gen := &mocks.MockGenerator{}
	gen.On("Analysis", mock.Anything, mock.Anything).Return(enrich.Analysis{Headline: "h", Analysis: "a"}, nil).Once()

	rep := enrich.NewProcessor(gen).Process(context.Background(), s, []catalog.Work{
		{ID: "A", Fields: catalog.NewFieldSet(catalog.Analysis)},
		{ID: "missing", Fields: catalog.NewFieldSet(catalog.Summary)},
	})

	gen.AssertExpectations(t)
	gen.AssertNotCalled(t, "Metadata", mock.Anything, mock.Anything)
	assert.Equal(t, 1, rep.Requested)
	assert.Equal(t, 1, rep.Calls)
}

func TestProcess_Disabled(t *testing.T) {
	s, work := newStore(t,
		catalog.RawItem{ID: "A", Name: "X", Price: "500"},
		catalog.RawItem{ID: "B", Name: "Y", Price: "600"},
	)

	rep := enrich.NewProcessor(enrich.Disabled{}).Process(context.Background(), s, work)

	assert.Equal(t, 0, rep.Applied)
	assert.Len(t, rep.Failed, 8)
	for _, f := range rep.Failed {
		assert.ErrorIs(t, f.Err, enrich.ErrGeneratorDisabled)
	}
	assert.Empty(t, s["A"].Summary)
	assert.Empty(t, s["B"].Headline)
}

func TestProcess_CanceledContext(t *testing.T) {
	s, work := newStore(t, catalog.RawItem{ID: "A", Name: "X", Price: "500"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &mocks.MockGenerator{}
	rep := enrich.NewProcessor(gen).Process(ctx, s, work)

	gen.AssertNotCalled(t, "Metadata", mock.Anything, mock.Anything)
	assert.Len(t, rep.Failed, 4)
	for _, f := range rep.Failed {
		assert.ErrorIs(t, f.Err, context.Canceled)
	}
}

// countingGenerator 동시에 실행 중인 호출 수의 최댓값을 기록합니다.
type countingGenerator struct {
	inFlight atomic.Int32
	maxSeen  atomic.Int32

	mu      sync.Mutex
	visited []string
}

func (g *countingGenerator) enter(id string) func() {
	n := g.inFlight.Add(1)
	for {
		m := g.maxSeen.Load()
		if n <= m || g.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}

	g.mu.Lock()
	g.visited = append(g.visited, id)
	g.mu.Unlock()

	time.Sleep(5 * time.Millisecond)
	return func() { g.inFlight.Add(-1) }
}

func (g *countingGenerator) Metadata(_ context.Context, in enrich.MetadataInput) (enrich.Metadata, error) {
	defer g.enter(in.ID)()
	return enrich.Metadata{Summary: "s-" + in.ID, Tags: []string{"t"}}, nil
}

func (g *countingGenerator) Analysis(_ context.Context, in enrich.AnalysisInput) (enrich.Analysis, error) {
	defer g.enter(in.ID)()
	return enrich.Analysis{Headline: "h-" + in.ID, Analysis: "a"}, nil
}

func TestProcess_BoundedConcurrency(t *testing.T) {
	var items []catalog.RawItem
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		items = append(items, catalog.RawItem{ID: id, Name: id, Price: "100"})
	}
	s, work := newStore(t, items...)

	gen := &countingGenerator{}
	rep := enrich.NewProcessor(gen, enrich.WithConcurrency(2), enrich.WithRateLimit(1000)).Process(context.Background(), s, work)

	assert.LessOrEqual(t, gen.maxSeen.Load(), int32(2))
	assert.Equal(t, 16, rep.Calls)
	assert.Empty(t, rep.Failed)
	for _, id := range s.IDs() {
		assert.Equal(t, "s-"+id, s[id].Summary)
		assert.Equal(t, "h-"+id, s[id].Headline)
	}
}
