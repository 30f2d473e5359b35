package config

import (
	"testing"

	apperrors "github.com/darkkaiser/kaidoki-navi/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckStruct_Messages(t *testing.T) {
	v := newValidator()

	tests := []struct {
		name     string
		input    any
		contains string
	}{
		{
			name:     "Required uses JSON key",
			input:    StoreConfig{Format: "csv", OnCorrupt: "reset"},
			contains: "path 값은 필수입니다",
		},
		{
			name:     "Oneof lists allowed values",
			input:    StoreConfig{Path: "p.csv", Format: "xml", OnCorrupt: "reset"},
			contains: "csv json sqlite",
		},
		{
			name:     "Invalid URL",
			input:    RenderConfig{OutputDir: "public", SiteName: "x", ProductsPerPage: 1, TagsPerPage: 1, BaseURL: "not a url"},
			contains: "base_url",
		},
		{
			name:     "Telegram token format",
			input:    TelegramConfig{Enabled: true, BotToken: "invalid", ChatID: 1},
			contains: "봇 토큰(bot_token)",
		},
		{
			name:     "Telegram token required when enabled",
			input:    TelegramConfig{Enabled: true, ChatID: 1},
			contains: "bot_token 값은 필수입니다",
		},
		{
			name:     "Fallback message",
			input:    ServerConfig{ListenPort: 70000},
			contains: "listen_port (조건: max)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkStruct(v, tt.input, "테스트")
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestCheckStruct_Valid(t *testing.T) {
	v := newValidator()

	assert.NoError(t, checkStruct(v, TelegramConfig{}, "텔레그램"))
	assert.NoError(t, checkStruct(v, TelegramConfig{Enabled: true, BotToken: "123456789:ABC-DEF1234ghIkl-zyx57W2v1u123ew11", ChatID: 1}, "텔레그램"))
	assert.NoError(t, checkStruct(v, newDefaultConfig().Store, "저장소"))
}

func TestCheckUniqueField(t *testing.T) {
	v := newValidator()

	assert.NoError(t, checkUniqueField(v, []SourceConfig{{ID: "a"}, {ID: "b"}}, "ID", "Source"))
	assert.NoError(t, checkUniqueField(v, []SourceConfig(nil), "ID", "Source"))

	err := checkUniqueField(v, []SourceConfig{{ID: "a"}, {ID: "a"}}, "ID", "Source")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "중복된 Source ID")
}
