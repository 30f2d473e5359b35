package source

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/darkkaiser/kaidoki-navi/internal/catalog"
	"github.com/darkkaiser/kaidoki-navi/internal/config"
	"github.com/darkkaiser/kaidoki-navi/internal/fetcher"
	apperrors "github.com/darkkaiser/kaidoki-navi/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	id    string
	items []catalog.RawItem
	err   error
	calls int
}

func (s *stubSource) ID() string { return s.id }

func (s *stubSource) Fetch(context.Context) ([]catalog.RawItem, error) {
	s.calls++
	return s.items, s.err
}

type stubSettings struct {
	Keyword string `json:"keyword"`
	Limit   int    `json:"limit"`
}

func (s *stubSettings) Validate() error {
	s.Keyword = strings.TrimSpace(s.Keyword)
	if s.Keyword == "" {
		return apperrors.New(apperrors.InvalidInput, "keyword가 비어 있습니다")
	}
	return nil
}

func stubFactory(cfg config.SourceConfig, _ fetcher.Fetcher) (Source, error) {
	s, err := DecodeSettings[stubSettings](cfg)
	if err != nil {
		return nil, err
	}
	return &stubSource{id: cfg.ID, items: []catalog.RawItem{{ID: s.Keyword}}}, nil
}

func TestFetchAll(t *testing.T) {
	a := &stubSource{id: "a", items: []catalog.RawItem{{ID: "1"}, {ID: "2"}}}
	b := &stubSource{id: "b", err: errors.New("boom")}
	c := &stubSource{id: "c", items: []catalog.RawItem{{ID: "3"}}}

	batch, rep := FetchAll(context.Background(), []Source{a, b, c})

	assert.Equal(t, []catalog.RawItem{{ID: "1"}, {ID: "2"}, {ID: "3"}}, batch)
	assert.Equal(t, 3, rep.Fetched)
	assert.Equal(t, []string{"b"}, rep.Failed)
}

func TestFetchAll_CanceledContext(t *testing.T) {
	a := &stubSource{id: "a", items: []catalog.RawItem{{ID: "1"}}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch, rep := FetchAll(ctx, []Source{a})
	assert.Empty(t, batch)
	assert.Equal(t, 0, a.calls)
	assert.Equal(t, []string{"a"}, rep.Failed)
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("stub", stubFactory))

	err := r.Register("stub", stubFactory)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	assert.Error(t, r.Register("", stubFactory))
	assert.Error(t, r.Register("nil", nil))
	assert.Equal(t, []string{"stub"}, r.Types())
}

func TestRegistry_Build(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("stub", stubFactory))

	t.Run("활성화된 수집처만 생성", func(t *testing.T) {
		sources, err := r.Build([]config.SourceConfig{
			{ID: "one", Type: "stub", Enabled: true, Data: map[string]any{"keyword": " tv ", "limit": "5"}},
			{ID: "off", Type: "stub", Enabled: false},
		}, nil)
		require.NoError(t, err)
		require.Len(t, sources, 1)
		assert.Equal(t, "one", sources[0].ID())

		items, err := sources[0].Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "tv", items[0].ID)
	})

	t.Run("잘못된 설정과 알 수 없는 유형", func(t *testing.T) {
		_, err := r.Build([]config.SourceConfig{
			{ID: "bad", Type: "stub", Enabled: true, Data: map[string]any{"keyword": ""}},
			{ID: "unused", Type: "stub", Enabled: true, Data: map[string]any{"keyword": "a", "extra": 1}},
			{ID: "x", Type: "unknown", Enabled: true},
		}, nil)
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
		assert.ErrorIs(t, err, ErrUnknownSourceType)
		assert.Contains(t, err.Error(), "3개")
	})
}
