package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/darkkaiser/kaidoki-navi/internal/pkg/errors"
	"github.com/darkkaiser/kaidoki-navi/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"성공", nil, exitOK},
		{"저장 실패", store.NewErrStoreWriteFailed("p.csv", "rename", errors.New("ro")), exitStoreWrite},
		{"손상된 저장소", store.NewErrCorruptStore("p.csv", errors.New("bad")), exitCorruptStore},
		{"래핑된 저장 실패", apperrors.Wrap(store.NewErrStoreWriteFailed("p.csv", "sync", errors.New("x")), apperrors.System, "run"), exitStoreWrite},
		{"잘못된 설정", apperrors.New(apperrors.InvalidInput, "bad config"), exitInvalidInput},
		{"설정 파일 없음", apperrors.New(apperrors.NotFound, "missing"), exitInvalidInput},
		{"기타", errors.New("boom"), exitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := newRootCommand()

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"run", "schedule", "render", "serve", "version"})

	flag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, "kaidoki-navi.json", flag.DefValue)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer

	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version", "--json"})
	require.NoError(t, cmd.Execute())

	var info map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.Contains(t, info, "version")
	assert.Contains(t, info, "go_version")
}

func TestExecute_MissingConfig(t *testing.T) {
	code := execute([]string{"run", "--config", filepath.Join(t.TempDir(), "nope.json")})
	assert.Equal(t, exitInvalidInput, code)
}

func TestExecute_UnknownCommand(t *testing.T) {
	assert.Equal(t, exitFailure, execute([]string{"nope"}))
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "public")
	cfgPath := filepath.Join(dir, "kaidoki-navi.json")

	cfg := `{
		"log": {"dir": "` + filepath.ToSlash(filepath.Join(dir, "logs")) + `"},
		"store": {"path": "` + filepath.ToSlash(filepath.Join(dir, "products.csv")) + `"},
		"render": {"output_dir": "` + filepath.ToSlash(out) + `"}
	}`
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	var stdout bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"render", "--config", cfgPath})
	require.NoError(t, cmd.Execute())

	assert.True(t, strings.Contains(stdout.String(), "상품 0개"))
	assert.FileExists(t, filepath.Join(out, "index.html"))
}

func TestRenderCommand_LeavesCorruptStoreInPlace(t *testing.T) {
	dir := t.TempDir()
	storePath := filepath.Join(dir, "products.csv")
	cfgPath := filepath.Join(dir, "kaidoki-navi.json")

	cfg := `{
		"log": {"dir": "` + filepath.ToSlash(filepath.Join(dir, "logs")) + `"},
		"store": {"path": "` + filepath.ToSlash(storePath) + `", "on_corrupt": "reset"},
		"render": {"output_dir": "` + filepath.ToSlash(filepath.Join(dir, "public")) + `"}
	}`
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	content := "name,price\nfoo,100\n"
	require.NoError(t, os.WriteFile(storePath, []byte(content), 0o644))

	assert.Equal(t, exitCorruptStore, execute([]string{"render", "--config", cfgPath}))

	data, err := os.ReadFile(storePath)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))

	matches, _ := filepath.Glob(storePath + ".corrupt-*")
	assert.Empty(t, matches)
}
