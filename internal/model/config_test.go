package model

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.API.BaseURL)
	assert.Equal(t, time.Second, cfg.PollInterval())
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	assert.Equal(t, "taskboard", cfg.Session.KeyringService)
	assert.Equal(t, "updated", cfg.Display.Sort)
}

func TestLoadConfigReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
api:
  base_url: https://lms.example.com/api
  max_retries: 1
session:
  poll_interval_ms: 250
log:
  level: debug
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://lms.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 1, cfg.API.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval())
	assert.Equal(t, "debug", cfg.Log.Level)
	// Unset keys keep their defaults.
	assert.Equal(t, 30, cfg.API.TimeoutSec)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("TASKBOARD_API_BASE_URL", "http://api.internal:9000")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://api.internal:9000", cfg.API.BaseURL)
}

func TestLoadConfigRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unterminated"), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
