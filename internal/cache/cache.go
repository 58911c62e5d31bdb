package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/beaconlabs/beacon/internal/metrics"
)

const keyPrefix = "beacon"

// Key builds a deterministic cache key from the studio, the queried
// resource and every parameter that affects the result.
func Key(resource, studioID string, params ...any) string {
	parts := make([]string, 0, 3+len(params))
	parts = append(parts, keyPrefix, resource, studioID)
	for _, p := range params {
		parts = append(parts, fmt.Sprint(p))
	}
	return strings.Join(parts, ":")
}

// Gate wraps aggregator calls with a read-through response cache. A nil
// redis client disables caching: every call computes.
type Gate struct {
	client  *redis.Client
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewGate creates a cache gate over an optional redis client.
func NewGate(client *redis.Client, logger *zap.Logger, m *metrics.Metrics) *Gate {
	return &Gate{client: client, logger: logger, metrics: m}
}

// Enabled reports whether a cache backend is attached.
func (g *Gate) Enabled() bool {
	return g != nil && g.client != nil
}

// GetOrCompute returns the cached payload for key when present,
// deserialized into dest. On a miss it runs compute (which must fill
// dest), stores the serialized result with the given TTL, and reports
// hit=false. A cache store failure is logged and never fails the
// request.
func (g *Gate) GetOrCompute(ctx context.Context, resource, key string, ttl time.Duration, dest any, compute func() error) (hit bool, err error) {
	if g.Enabled() {
		payload, err := g.client.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			if uerr := json.Unmarshal(payload, dest); uerr == nil {
				if g.metrics != nil {
					g.metrics.CacheHits.WithLabelValues(resource).Inc()
				}
				return true, nil
			}
			// Corrupt entry: fall through and recompute.
			g.logger.Warn("discarding unreadable cache entry", zap.String("key", key))
		case !errors.Is(err, redis.Nil):
			g.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	if g.metrics != nil {
		g.metrics.CacheMisses.WithLabelValues(resource).Inc()
	}

	if err := compute(); err != nil {
		return false, err
	}

	if g.Enabled() {
		payload, merr := json.Marshal(dest)
		if merr != nil {
			g.logger.Warn("cache serialize failed", zap.String("key", key), zap.Error(merr))
			return false, nil
		}
		if serr := g.client.Set(ctx, key, payload, ttl).Err(); serr != nil {
			g.logger.Warn("cache store failed", zap.String("key", key), zap.Error(serr))
		}
	}

	return false, nil
}
