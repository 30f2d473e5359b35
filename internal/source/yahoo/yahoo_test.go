package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/darkkaiser/kaidoki-navi/internal/catalog"
	"github.com/darkkaiser/kaidoki-navi/internal/config"
	"github.com/darkkaiser/kaidoki-navi/internal/fetcher"
	apperrors "github.com/darkkaiser/kaidoki-navi/internal/pkg/errors"
	"github.com/darkkaiser/kaidoki-navi/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hitsBody = `{
  "totalResultsAvailable": 3,
  "hits": [
    {"code": "store_tv-55", "name": "4K テレビ  55型", "price": 79800, "description": " 高画質 ",
     "url": "https://store.shopping.yahoo.co.jp/store/tv-55.html",
     "image": {"small": "https://s.jp/s.jpg", "medium": "https://s.jp/m.jpg"}},
    {"code": "", "name": "コードなし", "price": 100},
    {"code": "store_fan", "name": "扇風機", "price": "オープン価格", "image": {"small": "https://s.jp/fan.jpg"}}
  ]
}`

func newSource(t *testing.T, endpoint string) source.Source {
	t.Helper()

	src, err := New(config.SourceConfig{
		ID:      "yahoo-main",
		Type:    TypeName,
		Enabled: true,
		Data: map[string]any{
			"app_id":     "client-1",
			"endpoint":   endpoint,
			"results":    "20",
			"queries":    []any{map[string]any{"query": "テレビ", "category": "家電"}},
			"amazon_url": "https://amzn.to/x",
		},
	}, fetcher.NewHTTPFetcher(5*time.Second, "kaidoki-navi-test"))
	require.NoError(t, err)
	return src
}

func TestFetch_ParsesHits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "client-1", q.Get("appid"))
		assert.Equal(t, "テレビ", q.Get("query"))
		assert.Equal(t, "20", q.Get("results"))
		assert.Equal(t, "-review_count", q.Get("sort"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(hitsBody))
	}))
	defer srv.Close()

	items, err := newSource(t, srv.URL).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, catalog.RawItem{
		ID:           "yahoo_store_tv-55",
		Name:         "4K テレビ 55型",
		Price:        "79800",
		Description:  "高画質",
		CategoryHint: "家電",
		SourceFields: catalog.SourceFields{
			ImageURL:   "https://s.jp/m.jpg",
			YahooURL:   "https://store.shopping.yahoo.co.jp/store/tv-55.html",
			AmazonURL:  "https://amzn.to/x",
			MainECSite: "Yahoo!ショッピング",
			Source:     "yahoo",
		},
	}, items[0])

	assert.Empty(t, items[1].ID)
	assert.Equal(t, "オープン価格", items[2].Price)
	assert.Equal(t, "https://s.jp/fan.jpg", items[2].ImageURL)

	// 코드가 없거나 가격이 숫자가 아닌 항목은 Reconcile에서 걸러집니다.
	res := catalog.Reconcile(catalog.Store{}, items, "2024-01-01")
	assert.Equal(t, []string{"yahoo_store_tv-55"}, res.Created)
	assert.Len(t, res.Skipped, 2)
}

func TestFetch_UnexpectedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Error": {"Message": "invalid appid"}}`))
	}))
	defer srv.Close()

	_, err := newSource(t, srv.URL).Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedResponse)
}

func TestSettings_Validate(t *testing.T) {
	t.Run("환경 변수 대체", func(t *testing.T) {
		t.Setenv("YAHOO_APP_ID", "env-id")

		s := &settings{Queries: []querySettings{{Query: "冷蔵庫"}}}
		require.NoError(t, s.Validate())
		assert.Equal(t, "env-id", s.AppID)
		assert.Equal(t, defaultResults, s.Results)
		assert.Equal(t, defaultSort, s.Sort)
	})

	t.Run("app_id 누락", func(t *testing.T) {
		t.Setenv("YAHOO_APP_ID", "")

		s := &settings{Queries: []querySettings{{Query: "冷蔵庫"}}}
		assert.ErrorIs(t, s.Validate(), ErrAppIDMissing)
	})

	t.Run("잘못된 값", func(t *testing.T) {
		cases := []*settings{
			{AppID: "id"},
			{AppID: "id", Queries: []querySettings{{Query: "a"}}, Results: 101},
			{AppID: "id", Queries: []querySettings{{Query: "a"}}, Sort: "name"},
			{AppID: "id", Queries: []querySettings{{Query: " "}}},
		}
		for _, s := range cases {
			err := s.Validate()
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
		}
	})
}
