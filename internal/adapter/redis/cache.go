// Package redis caches rainfall archive responses in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/couchcryptid/rainwater-estimator-service/internal/domain"
	"github.com/couchcryptid/rainwater-estimator-service/internal/observability"
)

// ErrCacheMiss is returned by a KVStore when the key does not exist.
var ErrCacheMiss = errors.New("cache miss")

// KVStore is the subset of Redis the cache needs. Tests replace it with a map.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// Store adapts a go-redis client to KVStore.
type Store struct {
	client *goredis.Client
}

// NewStore connects to Redis. The connection is lazy; use Ping to check it.
func NewStore(addr, password string, db int) *Store {
	return &Store{client: goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", ErrCacheMiss
		}
		return "", err
	}
	return val, nil
}

func (s *Store) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

// Ping reports whether Redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}

// CachedArchive wraps a RainfallArchive with a Redis-backed cache. Cache
// failures degrade to calling the archive directly.
type CachedArchive struct {
	inner   domain.RainfallArchive
	kv      KVStore
	ttl     time.Duration
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewCachedArchive creates the cache decorator.
func NewCachedArchive(inner domain.RainfallArchive, kv KVStore, ttl time.Duration, metrics *observability.Metrics, logger *slog.Logger) *CachedArchive {
	return &CachedArchive{inner: inner, kv: kv, ttl: ttl, metrics: metrics, logger: logger}
}

func (c *CachedArchive) FetchDaily(ctx context.Context, lat, lon float64, start, end time.Time) ([]float64, error) {
	key := cacheKey(lat, lon, start, end)

	raw, err := c.kv.Get(ctx, key)
	switch {
	case err == nil:
		var daily []float64
		if jsonErr := json.Unmarshal([]byte(raw), &daily); jsonErr == nil {
			c.metrics.RainfallCache.WithLabelValues("hit").Inc()
			return daily, nil
		}
		c.logger.Warn("discarding corrupt rainfall cache entry", "key", key)
		c.metrics.RainfallCache.WithLabelValues("error").Inc()
	case errors.Is(err, ErrCacheMiss):
		c.metrics.RainfallCache.WithLabelValues("miss").Inc()
	default:
		c.logger.Warn("rainfall cache read failed", "key", key, "error", err)
		c.metrics.RainfallCache.WithLabelValues("error").Inc()
	}

	daily, err := c.inner.FetchDaily(ctx, lat, lon, start, end)
	if err != nil {
		return nil, err
	}
	// Empty series are not cached so a later request can pick up new data.
	if len(daily) == 0 {
		return daily, nil
	}

	encoded, err := json.Marshal(daily)
	if err != nil {
		return daily, nil
	}
	if err := c.kv.Set(ctx, key, string(encoded), c.ttl); err != nil {
		c.logger.Warn("rainfall cache write failed", "key", key, "error", err)
	}
	return daily, nil
}

func cacheKey(lat, lon float64, start, end time.Time) string {
	return fmt.Sprintf("rainfall:%.4f,%.4f:%s:%s", lat, lon, start.Format(time.DateOnly), end.Format(time.DateOnly))
}
