package logger

import (
	"os"
	"path/filepath"
	"testing"

	"formbuilder/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesJSONFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "debug"},
		Log:    config.LogConfig{File: file},
	}

	log := New(cfg)
	log.Debug("form updated")
	_ = log.Sync() // stdout may not support fsync

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"form updated"`)
	assert.Contains(t, string(data), `"level":"DEBUG"`)
}
