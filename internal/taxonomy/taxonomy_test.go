package taxonomy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/darkkaiser/kaidoki-navi/internal/catalog"
	apperrors "github.com/darkkaiser/kaidoki-navi/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	tx := Default()
	assert.Equal(t, []string{"パソコン・周辺機器", "家電", "美容・健康"}, tx.Mains())

	groups := tx.Groups()
	require.Len(t, groups, 3)
	assert.Len(t, groups[1].Subs, 8)

	groups[0].Subs[0] = "changed"
	assert.Equal(t, "ノートパソコン", tx.Groups()[0].Subs[0])
}

func TestMap(t *testing.T) {
	tx := Default()

	tests := []struct {
		name        string
		sub         string
		productName string
		want        catalog.Category
	}{
		{"정의된 서브와 일치", "冷蔵庫", "大容量 ファミリー向け", catalog.Category{Main: "家電", Sub: "冷蔵庫"}},
		{"상품명에 서브 포함", "薄型", "薄型 ノートパソコン 14インチ", catalog.Category{Main: "パソコン・周辺機器", Sub: "ノートパソコン"}},
		{"대소문자 무시", "", "高性能ゲーミングpc RTX搭載", catalog.Category{Main: "パソコン・周辺機器", Sub: "ゲーミングPC"}},
		{"상품명에 메인 포함", "炊飯器", "人気の家電セット", catalog.Category{Main: "家電", Sub: "その他"}},
		{"분류 불가", "文房具", "ボールペン 10本", catalog.Category{Main: "その他", Sub: "その他"}},
		{"서브 일치가 상품명보다 우선", "マッサージ機", "ノートパソコン用クッション", catalog.Category{Main: "美容・健康", Sub: "マッサージ機"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tx.Map(tt.sub, tt.productName))
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("경로가 없으면 기본값", func(t *testing.T) {
		tx, err := Load("")
		require.NoError(t, err)
		assert.Len(t, tx.Mains(), 3)
	})

	t.Run("파일 재정의", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "categories.yaml")
		require.NoError(t, os.WriteFile(path, []byte("- main: 食品\n  subs: [お米, ' お米 ', コーヒー, '']\n"), 0o644))

		tx, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, []Group{{Main: "食品", Subs: []string{"お米", "コーヒー"}}}, tx.Groups())
		assert.Equal(t, catalog.Category{Main: "食品", Sub: "コーヒー"}, tx.Map("", "ドリップコーヒー 100袋"))
	})

	t.Run("파일 없음", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.NotFound))
	})

	t.Run("잘못된 정의", func(t *testing.T) {
		cases := map[string]string{
			"문법 오류":   "- main: [",
			"빈 목록":    "[]",
			"빈 main":  "- main: ''\n  subs: [a]",
			"예약어":     "- main: その他",
			"중복 main": "- main: A\n- main: A",
		}
		for name, content := range cases {
			t.Run(name, func(t *testing.T) {
				path := filepath.Join(t.TempDir(), "c.yaml")
				require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

				_, err := Load(path)
				require.Error(t, err)
				assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
			})
		}
	})
}
