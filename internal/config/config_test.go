package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())

	assert.Equal(t, "localhost", cfg.ClickHouse.Host)
	assert.Equal(t, 9000, cfg.ClickHouse.Port)
	assert.Equal(t, "beacon", cfg.ClickHouse.Database)

	assert.Equal(t, 5*time.Minute, cfg.Cache.StatsTTL)
	assert.Equal(t, 10*time.Second, cfg.Cache.RealtimeTTL)
	assert.Equal(t, 100, cfg.Ingest.MaxBatchSize)
	assert.False(t, cfg.Auth.Enabled)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BEACON_HTTP_ADDR", ":9999")
	t.Setenv("BEACON_ENV", "production")
	t.Setenv("BEACON_CH_HOST", "ch.internal")
	t.Setenv("BEACON_CH_PORT", "9440")
	t.Setenv("BEACON_CACHE_STATS_TTL", "90s")
	t.Setenv("BEACON_INGEST_MAX_BATCH", "50")
	t.Setenv("BEACON_RATE_LIMIT_ENABLED", "false")
	t.Setenv("BEACON_AUTH_SKIP_PATHS", "/health, /metrics")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "ch.internal", cfg.ClickHouse.Host)
	assert.Equal(t, 9440, cfg.ClickHouse.Port)
	assert.Equal(t, 90*time.Second, cfg.Cache.StatsTTL)
	assert.Equal(t, 50, cfg.Ingest.MaxBatchSize)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, []string{"/health", "/metrics"}, cfg.Auth.SkipPaths)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("BEACON_CH_PORT", "not-a-number")
	t.Setenv("BEACON_CACHE_STATS_TTL", "soon")
	t.Setenv("BEACON_RATE_LIMIT_ENABLED", "maybe")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.ClickHouse.Port)
	assert.Equal(t, 5*time.Minute, cfg.Cache.StatsTTL)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestValidateAuthRequiresKey(t *testing.T) {
	t.Setenv("BEACON_AUTH_ENABLED", "true")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BEACON_API_KEY")

	t.Setenv("BEACON_API_KEY", "secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Auth.Enabled)
}

func TestValidateBatchSize(t *testing.T) {
	t.Setenv("BEACON_INGEST_MAX_BATCH", "-5")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BEACON_INGEST_MAX_BATCH")
}

func TestClickHouseDSN(t *testing.T) {
	c := ClickHouseConfig{
		Host: "db.example.com", Port: 9000,
		User: "writer", Password: "pw", Database: "beacon",
	}
	assert.Equal(t, "clickhouse://writer:pw@db.example.com:9000/beacon", c.DSN())
}
