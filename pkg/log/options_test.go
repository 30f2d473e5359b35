package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_Validate(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	tests := []struct {
		name    string
		opts    Options
		wantErr string
	}{
		{"Valid", Options{Name: "app"}, ""},
		{"Missing name", Options{}, "Name"},
		{"Dir is a file", Options{Name: "app", Dir: file}, "파일로 존재"},
		{"Negative MaxAge", Options{Name: "app", MaxAge: -1}, "MaxAge"},
		{"Negative MaxBackups", Options{Name: "app", MaxBackups: -3}, "MaxBackups"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestProfiles(t *testing.T) {
	prod := NewProductionOptions("kaidoki-navi")
	assert.NoError(t, prod.Validate())
	assert.Equal(t, InfoLevel, prod.Level)
	assert.True(t, prod.EnableCriticalLog)
	assert.False(t, prod.EnableConsoleLog)

	dev := NewDevelopmentOptions("kaidoki-navi")
	assert.NoError(t, dev.Validate())
	assert.Equal(t, TraceLevel, dev.Level)
	assert.True(t, dev.EnableConsoleLog)
}

func TestWithComponentAndFields(t *testing.T) {
	entry := WithComponentAndFields("store", Fields{"path": "data/products.csv", "component": "ignored"})
	assert.Equal(t, "store", entry.Data["component"])
	assert.Equal(t, "data/products.csv", entry.Data["path"])

	assert.Equal(t, "pipeline", WithComponent("pipeline").Data["component"])
}
