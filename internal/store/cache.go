package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ecomlens/reviewradar/internal/metrics"
	"github.com/ecomlens/reviewradar/pkg/model"
)

// Cache is a short-TTL cache of combined scrape results, keyed by locale and
// ASIN. It exists to keep repeat batches from re-hitting the marketplace; it
// is not a persistence layer.
type Cache interface {
	GetResult(ctx context.Context, locale, asin string) (*model.CombinedResult, bool)
	SetResult(ctx context.Context, locale, asin string, res model.CombinedResult) error
	HealthCheck(ctx context.Context) error
	Close() error
}

// RedisCache implements Cache on a Redis instance.
type RedisCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedis connects to Redis and verifies the connection with a ping.
func NewRedis(addr, pass string, db int, ttl time.Duration, logger *zap.Logger) (*RedisCache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: pass,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisCache{redis: rdb, ttl: ttl, logger: logger}, nil
}

func resultKey(locale, asin string) string {
	return "scrape:" + locale + ":" + asin
}

// GetResult returns the cached result for an ASIN, or (nil, false) on a miss.
// Cache failures are treated as misses — the fetch path is the fallback.
func (c *RedisCache) GetResult(ctx context.Context, locale, asin string) (*model.CombinedResult, bool) {
	raw, err := c.redis.Get(ctx, resultKey(locale, asin)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("store.cache_get_failed",
				zap.String("asin", asin),
				zap.Error(err))
		}
		metrics.IncCacheAccess("miss")
		return nil, false
	}

	var res model.CombinedResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		c.logger.Warn("store.cache_decode_failed",
			zap.String("asin", asin),
			zap.Error(err))
		metrics.IncCacheAccess("miss")
		return nil, false
	}

	metrics.IncCacheAccess("hit")
	return &res, true
}

// SetResult stores a combined result under the cache TTL.
func (c *RedisCache) SetResult(ctx context.Context, locale, asin string, res model.CombinedResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}
	if err := c.redis.Set(ctx, resultKey(locale, asin), data, c.ttl).Err(); err != nil {
		c.logger.Warn("store.cache_set_failed",
			zap.String("asin", asin),
			zap.Error(err))
		return err
	}
	return nil
}

func (c *RedisCache) HealthCheck(ctx context.Context) error {
	return c.redis.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.redis.Close()
}
