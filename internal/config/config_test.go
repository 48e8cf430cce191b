package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "http://localhost:8080/api/v1", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, 1000, cfg.API.FetchLimit)
	assert.Equal(t, 20, cfg.API.SearchLimit)
	assert.Equal(t, 4, cfg.Import.Workers)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().API.BaseURL, cfg.API.BaseURL)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wrw.yaml")
	data := []byte("api:\n  base_url: http://api.example.test/v1\n  timeout: 5s\nimport:\n  workers: 8\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://api.example.test/v1", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, 8, cfg.Import.Workers)
	// Untouched sections keep defaults.
	assert.Equal(t, 1000, cfg.API.FetchLimit)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("WRW_API_URL", "http://override.test/api/v1")
	t.Setenv("WRW_API_TIMEOUT", "12s")
	t.Setenv("WRW_IMPORT_WORKERS", "2")
	t.Setenv("WRW_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://override.test/api/v1", cfg.API.BaseURL)
	assert.Equal(t, 12*time.Second, cfg.API.Timeout)
	assert.Equal(t, 2, cfg.Import.Workers)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestEnvOverrideIgnoresGarbage(t *testing.T) {
	t.Setenv("WRW_API_TIMEOUT", "not-a-duration")
	t.Setenv("WRW_IMPORT_WORKERS", "-3")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, 4, cfg.Import.Workers)
}

func TestValidateRejectsEmptyBaseURL(t *testing.T) {
	t.Setenv("WRW_API_URL", "")

	path := filepath.Join(t.TempDir(), "wrw.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  base_url: \"\"\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base_url")
}
