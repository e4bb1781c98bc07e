package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8090", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, "profiles.db", cfg.Profiles.DBPath)
	assert.Equal(t, int64(64<<20), cfg.Text.MaxBytes)
	assert.NotEmpty(t, cfg.Storage.Root)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("STORAGE_ROOT", "/srv/files")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("TEXT_MAX_BYTES", "1024")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, "/srv/files", cfg.Storage.Root)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, int64(1024), cfg.Text.MaxBytes)
}

func TestDefaultResolvesStorageRoot(t *testing.T) {
	cfg := Default()
	assert.NotEmpty(t, cfg.Storage.Root)
	assert.Equal(t, "8090", cfg.Server.Port)
}
