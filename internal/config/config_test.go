package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"LOG_LEVEL", "LOG_FORMAT", "WFO_DATABASE_DSN", "WFO_DATABASE_QUERY_TIMEOUT", "WFO_REDIS_ADDR", "WFO_CACHE_TTL", "WFO_METRICS_ADDR", "WFO_RATE_LIMIT", "WFO_BREAKER_OPEN_TIMEOUT", "WFO_MAX_RETRIES"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Empty(t, cfg.Database.DSN)
	assert.Equal(t, 30*time.Second, cfg.Database.QueryTimeout)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, time.Hour, cfg.Redis.CacheTTL)
	assert.Equal(t, 10.0, cfg.Guard.RequestsPerSecond)
	assert.Equal(t, time.Minute, cfg.Guard.OpenTimeout)
	assert.Equal(t, 3, cfg.Guard.MaxRetries)
	assert.Empty(t, cfg.Monitoring.MetricsAddr)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("WFO_DATABASE_DSN", "postgres://wfo@localhost/labs")
	t.Setenv("WFO_DATABASE_MAX_CONNS", "12")
	t.Setenv("WFO_REDIS_ADDR", "localhost:6379")
	t.Setenv("WFO_REDIS_DB", "3")
	t.Setenv("WFO_CACHE_TTL", "90")
	t.Setenv("WFO_CACHE_DISABLED", "true")
	t.Setenv("WFO_RATE_LIMIT", "2.5")
	t.Setenv("WFO_BREAKER_OPEN_TIMEOUT", "15s")
	t.Setenv("WFO_MAX_RETRIES", "0")
	t.Setenv("WFO_METRICS_ADDR", ":9102")

	cfg := Load()

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "postgres://wfo@localhost/labs", cfg.Database.DSN)
	assert.Equal(t, 12, cfg.Database.MaxConns)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 90*time.Second, cfg.Redis.CacheTTL)
	assert.True(t, cfg.Redis.Disabled)
	assert.Equal(t, 2.5, cfg.Guard.RequestsPerSecond)
	assert.Equal(t, 15*time.Second, cfg.Guard.OpenTimeout)
	assert.Equal(t, 0, cfg.Guard.MaxRetries)
	assert.Equal(t, ":9102", cfg.Monitoring.MetricsAddr)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("WFO_DATABASE_MAX_CONNS", "many")
	t.Setenv("WFO_CACHE_TTL", "soon")
	t.Setenv("WFO_CACHE_DISABLED", "maybe")

	cfg := Load()

	assert.Equal(t, 5, cfg.Database.MaxConns)
	assert.Equal(t, time.Hour, cfg.Redis.CacheTTL)
	assert.False(t, cfg.Redis.Disabled)
}

func TestLoadEnvFile(t *testing.T) {
	loaded, err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.False(t, loaded)

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("WFO_TEST_ENV_FILE_KEY=from-file\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("WFO_TEST_ENV_FILE_KEY") })

	loaded, err = LoadEnvFile(path)
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Equal(t, "from-file", os.Getenv("WFO_TEST_ENV_FILE_KEY"))
}
