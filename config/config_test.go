package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  port: ":9090"
  mode: release
validator:
  label_check: exhaustive
  train_image_size: 64
core:
  num_colors: 3
  num_classes: 4
  offsets:
    - {x: 1, y: 0}
    - {x: 0, y: -2}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, LabelCheckExhaustive, cfg.Validator.LabelCheck)
	assert.Equal(t, 3, cfg.Core.NumColors)
	assert.Equal(t, 4, cfg.Core.NumClasses)
	assert.Equal(t, 10, cfg.Core.Padding)
	assert.Equal(t, []Offset{{X: 1}, {Y: -2}}, cfg.Core.Offsets)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("bad label check", func(t *testing.T) {
		_, err := Load(writeConfig(t, "validator:\n  label_check: sometimes\n"))
		assert.ErrorContains(t, err, "label_check")
	})

	t.Run("bad core", func(t *testing.T) {
		_, err := Load(writeConfig(t, "core:\n  num_classes: 0\n"))
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestNewFrom_FallsBackToDefaults(t *testing.T) {
	cfg, err := NewFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, getDefaultConfig(), cfg)
	assert.NoError(t, cfg.check())
}

func TestNewFrom_InvalidFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed yaml", "server:\n  port: [\n"},
		{"bad label check", "validator:\n  label_check: sometimes\n"},
		{"bad core", "core:\n  num_classes: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewFrom(writeConfig(t, tt.content))
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}
