package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the Beacon analytics service.
type Config struct {
	Server     ServerConfig
	ClickHouse ClickHouseConfig
	Redis      RedisConfig
	Cache      CacheConfig
	Ingest     IngestConfig
	Auth       AuthConfig
	RateLimit  RateLimitConfig
	Log        LogConfig
	Metrics    MetricsConfig
	Geo        GeoConfig
}

type ServerConfig struct {
	Addr            string
	Env             string
	ShutdownTimeout time.Duration
}

type ClickHouseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	Database  string
	MaxConns  int
	IdleConns int
}

// DSN returns the ClickHouse connection string.
func (c ClickHouseConfig) DSN() string {
	return fmt.Sprintf(
		"clickhouse://%s:%s@%s:%d/%s",
		c.User, c.Password, c.Host, c.Port, c.Database,
	)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CacheConfig controls the read-through response cache.
type CacheConfig struct {
	StatsTTL    time.Duration
	RealtimeTTL time.Duration
}

type IngestConfig struct {
	MaxBatchSize int
}

type AuthConfig struct {
	Enabled   bool
	APIKey    string
	SkipPaths []string
}

type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// GeoConfig configures the MaxMind fallback lookup.
type GeoConfig struct {
	Enabled      bool
	DatabasePath string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:            getEnv("BEACON_HTTP_ADDR", ":8080"),
			Env:             getEnv("BEACON_ENV", "development"),
			ShutdownTimeout: getDurationEnv("BEACON_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		ClickHouse: ClickHouseConfig{
			Host:      getEnv("BEACON_CH_HOST", "localhost"),
			Port:      getIntEnv("BEACON_CH_PORT", 9000),
			User:      getEnv("BEACON_CH_USER", "default"),
			Password:  getEnv("BEACON_CH_PASSWORD", ""),
			Database:  getEnv("BEACON_CH_DATABASE", "beacon"),
			MaxConns:  getIntEnv("BEACON_CH_MAX_CONNS", 10),
			IdleConns: getIntEnv("BEACON_CH_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			Addr:     getEnv("BEACON_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("BEACON_REDIS_PASSWORD", ""),
			DB:       getIntEnv("BEACON_REDIS_DB", 0),
		},
		Cache: CacheConfig{
			StatsTTL:    getDurationEnv("BEACON_CACHE_STATS_TTL", 5*time.Minute),
			RealtimeTTL: getDurationEnv("BEACON_CACHE_REALTIME_TTL", 10*time.Second),
		},
		Ingest: IngestConfig{
			MaxBatchSize: getIntEnv("BEACON_INGEST_MAX_BATCH", 100),
		},
		Auth: AuthConfig{
			Enabled:   getBoolEnv("BEACON_AUTH_ENABLED", false),
			APIKey:    getEnv("BEACON_API_KEY", ""),
			SkipPaths: getSliceEnv("BEACON_AUTH_SKIP_PATHS", []string{"/health", "/metrics", "/track", "/track/batch"}),
		},
		RateLimit: RateLimitConfig{
			Enabled: getBoolEnv("BEACON_RATE_LIMIT_ENABLED", true),
			RPS:     getFloatEnv("BEACON_RATE_LIMIT_RPS", 500),
			Burst:   getIntEnv("BEACON_RATE_LIMIT_BURST", 100),
		},
		Log: LogConfig{
			Level:  getEnv("BEACON_LOG_LEVEL", "info"),
			Format: getEnv("BEACON_LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getBoolEnv("BEACON_METRICS_ENABLED", true),
			Path:    getEnv("BEACON_METRICS_PATH", "/metrics"),
		},
		Geo: GeoConfig{
			Enabled:      getBoolEnv("BEACON_GEO_ENABLED", false),
			DatabasePath: getEnv("BEACON_GEO_DB_PATH", "/app/data/GeoLite2-City.mmdb"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("BEACON_API_KEY is required when auth is enabled")
	}
	if c.Ingest.MaxBatchSize <= 0 {
		return fmt.Errorf("BEACON_INGEST_MAX_BATCH must be positive")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Helper functions for reading environment variables

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getFloatEnv(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getSliceEnv(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				result = append(result, p)
			}
		}
		return result
	}
	return def
}
