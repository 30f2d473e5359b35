package maputil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type keyword struct {
	Keyword  string `json:"keyword"`
	Category string `json:"category"`
}

type settings struct {
	AppID    string        `json:"app_id"`
	Hits     int           `json:"hits"`
	Timeout  time.Duration `json:"timeout"`
	Sorts    []string      `json:"sorts"`
	Keywords []keyword     `json:"keywords"`
}

func TestDecode(t *testing.T) {
	t.Run("Weakly typed input", func(t *testing.T) {
		got, err := Decode[settings](map[string]any{
			"app_id":  "abc",
			"hits":    "5",
			"timeout": "20s",
			"sorts":   "-reviewCount, +itemPrice",
			"keywords": []any{
				map[string]any{"keyword": "冷蔵庫", "category": "家電"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "abc", got.AppID)
		assert.Equal(t, 5, got.Hits)
		assert.Equal(t, 20*time.Second, got.Timeout)
		assert.Equal(t, []string{"-reviewCount", "+itemPrice"}, got.Sorts)
		assert.Equal(t, []keyword{{Keyword: "冷蔵庫", Category: "家電"}}, got.Keywords)
	})

	t.Run("Nil input returns zero value", func(t *testing.T) {
		got, err := Decode[settings](nil)
		require.NoError(t, err)
		assert.Equal(t, settings{}, *got)
	})

	t.Run("Unused keys are ignored by default", func(t *testing.T) {
		_, err := Decode[settings](map[string]any{"unknown": 1})
		assert.NoError(t, err)
	})

	t.Run("Unused keys fail when requested", func(t *testing.T) {
		_, err := Decode[settings](map[string]any{"unknown": 1}, WithErrorUnused(true))
		assert.Error(t, err)
	})

	t.Run("Invalid duration", func(t *testing.T) {
		_, err := Decode[settings](map[string]any{"timeout": "soon"})
		assert.Error(t, err)
	})
}
