package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    int
		wantErr bool
	}{
		{"Plain", "1000", 1000, false},
		{"Thousands separator", "1,000", 1000, false},
		{"Yen suffix", "12,800円", 12800, false},
		{"Yen prefix", "¥980", 980, false},
		{"Full-width digits", "１，２８０円", 1280, false},
		{"Full-width yen sign", "￥３００", 300, false},
		{"Surrounding spaces", "  500 ", 500, false},
		{"Zero", "0", 0, false},
		{"Empty", "", 0, true},
		{"Negative", "-10", 0, true},
		{"Not a number", "お問い合わせ", 0, true},
		{"Decimal", "10.5", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePrice(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewRecord(t *testing.T) {
	t.Run("Seeds history and leaves derived fields empty", func(t *testing.T) {
		rec, err := NewRecord(RawItem{
			ID:           "shop:10001",
			Name:         " Widget ",
			Price:        "1,000",
			Description:  "desc",
			CategoryHint: "家電",
			SourceFields: SourceFields{RakutenURL: "https://item.rakuten.co.jp/shop/10001/", Source: "rakuten"},
		}, "2024-01-01")
		require.NoError(t, err)

		assert.Equal(t, "shop:10001", rec.ID)
		assert.Equal(t, "Widget", rec.Name)
		assert.Equal(t, 1000, rec.Price)
		assert.Equal(t, []PricePoint{{Date: "2024-01-01", Price: 1000}}, rec.PriceHistory)
		assert.Equal(t, Category{Main: "家電"}, rec.Category)
		assert.Equal(t, Date("2024-01-01"), rec.CreatedOn)
		assert.Equal(t, "rakuten", rec.Source)
		assert.Equal(t, PageURL("shop:10001"), rec.PageURL)
		for _, f := range AllFields {
			assert.True(t, IsFieldEmpty(rec, f), f.String())
		}
	})

	t.Run("Line endings are unified", func(t *testing.T) {
		rec, err := NewRecord(RawItem{ID: "A", Name: "名前\r\n2行目", Price: "1", Description: "line1\r\nline2\r\n"}, "2024-01-01")
		require.NoError(t, err)
		assert.Equal(t, "名前\n2行目", rec.Name)
		assert.Equal(t, "line1\nline2", rec.Description)
	})

	t.Run("Missing hint falls back to uncategorized", func(t *testing.T) {
		rec, err := NewRecord(RawItem{ID: "A", Price: "1"}, "2024-01-01")
		require.NoError(t, err)
		assert.Equal(t, UncategorizedMain, rec.Category.Main)
	})

	t.Run("Empty id is malformed", func(t *testing.T) {
		_, err := NewRecord(RawItem{ID: "  ", Price: "100"}, "2024-01-01")
		require.Error(t, err)
		assert.True(t, IsMalformedRecord(err))
	})

	t.Run("Unparseable price is malformed", func(t *testing.T) {
		_, err := NewRecord(RawItem{ID: "A", Price: "abc"}, "2024-01-01")
		require.Error(t, err)
		assert.True(t, IsMalformedRecord(err))
		assert.Contains(t, err.Error(), "A")
	})
}

func TestPageURL(t *testing.T) {
	ids := []string{"shop:10001", "shop_10001", "shop-10001", "SHOP:10001", "../../etc/passwd", "a/b\\c", "ノートPC:1", ""}

	seen := make(map[string]string)
	for _, id := range ids {
		u := PageURL(id)

		assert.True(t, strings.HasPrefix(u, "pages/"), u)
		assert.True(t, strings.HasSuffix(u, ".html"), u)
		assert.NotContains(t, strings.TrimPrefix(u, "pages/"), "/", u)
		assert.NotContains(t, u, "\\", u)
		assert.NotContains(t, u, "..", u)
		assert.Equal(t, u, PageURL(id), "deterministic")

		if other, dup := seen[u]; dup {
			t.Fatalf("PageURL collision: %q and %q -> %q", other, id, u)
		}
		seen[u] = id
	}

	long := strings.Repeat("x", 500)
	assert.LessOrEqual(t, len(PageURL(long)), len("pages/")+pageNameMaxBytes+1+16+len(".html"))
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"セール", "冷蔵庫"}, NormalizeTags([]string{" セール", "#冷蔵庫", "", "セール"}))
	assert.Nil(t, NormalizeTags(nil))
	assert.Nil(t, NormalizeTags([]string{" ", "#"}))
}

func TestStore_CloneIsDeep(t *testing.T) {
	s := Store{"A": {ID: "A", Tags: []string{"x"}, PriceHistory: []PricePoint{{Date: "2024-01-01", Price: 1}}}}
	c := s.Clone()

	c["A"].Tags[0] = "changed"
	c["A"].PriceHistory[0].Price = 99
	c["A"].Name = "changed"

	assert.Equal(t, "x", s["A"].Tags[0])
	assert.Equal(t, 1, s["A"].PriceHistory[0].Price)
	assert.Equal(t, "", s["A"].Name)
}

func TestProductRecord_Prices(t *testing.T) {
	r := &ProductRecord{Price: 900, PriceHistory: []PricePoint{{"2024-01-01", 1000}, {"2024-01-02", 800}, {"2024-01-03", 900}}}
	assert.Equal(t, 900, r.LastPrice())
	assert.Equal(t, 800, r.LowestPrice())
	assert.Equal(t, 5, (&ProductRecord{Price: 5}).LastPrice())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, Date("2024-02-29"), d)

	_, err = ParseDate("2024/02/29")
	assert.Error(t, err)
}
