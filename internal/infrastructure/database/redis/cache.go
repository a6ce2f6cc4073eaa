package redis

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/coverage-intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/coverage-intelligence/pkg/errors"
)

// ScoreCache stores encoded coverage results under a namespace prefix.  It
// satisfies the application's coverage.ScoreCache.
type ScoreCache struct {
	client     *Client
	logger     logging.Logger
	prefix     string
	scanCount  int64
	group      singleflight.Group
	defaultTTL time.Duration
}

// CacheOption customizes a ScoreCache.
type CacheOption func(*ScoreCache)

// WithPrefix namespaces every key, e.g. "ci" stores "ci:coverage:...".
func WithPrefix(prefix string) CacheOption {
	return func(c *ScoreCache) {
		if prefix != "" && !strings.HasSuffix(prefix, ":") {
			prefix += ":"
		}
		c.prefix = prefix
	}
}

// WithScanCount sets the SCAN batch size of prefix invalidation.
func WithScanCount(n int64) CacheOption {
	return func(c *ScoreCache) { c.scanCount = n }
}

// WithDefaultTTL applies when a caller passes ttl <= 0.
func WithDefaultTTL(ttl time.Duration) CacheOption {
	return func(c *ScoreCache) { c.defaultTTL = ttl }
}

// NewScoreCache returns a redis-backed score cache.
func NewScoreCache(client *Client, log logging.Logger, opts ...CacheOption) *ScoreCache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &ScoreCache{
		client:     client,
		logger:     log,
		scanCount:  100,
		defaultTTL: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ScoreCache) fullKey(key string) string {
	return c.prefix + key
}

// GetOrCompute reads key, or runs compute once per key across concurrent
// callers of this process and stores its output.  A redis read failure is
// logged and treated as a miss so an outage degrades to uncached scoring.
func (c *ScoreCache) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(ctx context.Context) ([]byte, error)) ([]byte, bool, error) {
	full := c.fullKey(key)
	data, err := c.client.Get(ctx, full).Bytes()
	switch {
	case err == nil:
		return data, true, nil
	case stderrors.Is(err, redis.Nil):
	default:
		c.logger.Warn("score cache read failed", logging.String("key", full), logging.Err(err))
	}

	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	v, err, _ := c.group.Do(full, func() (interface{}, error) {
		value, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		if setErr := c.client.Set(ctx, full, value, ttl).Err(); setErr != nil {
			c.logger.Warn("score cache write failed", logging.String("key", full), logging.Err(setErr))
		}
		return value, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.([]byte), false, nil
}

// Invalidate deletes the given keys.
func (c *ScoreCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.fullKey(k)
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "delete cache keys")
	}
	return nil
}

// InvalidatePrefix deletes every key under prefix with SCAN + DEL.
func (c *ScoreCache) InvalidatePrefix(ctx context.Context, prefix string) error {
	_, err := c.DeleteByPrefix(ctx, prefix)
	return err
}

// DeleteByPrefix reports how many keys it removed.
func (c *ScoreCache) DeleteByPrefix(ctx context.Context, prefix string) (int64, error) {
	var (
		deleted int64
		cursor  uint64
	)
	match := c.fullKey(prefix) + "*"
	for {
		keys, next, err := c.client.Scan(ctx, cursor, match, c.scanCount).Result()
		if err != nil {
			return deleted, errors.Wrap(err, errors.ErrCodeCacheError, "scan cache keys")
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, errors.Wrap(err, errors.ErrCodeCacheError, "delete cache keys")
			}
			deleted += n
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	c.logger.Debug("score cache prefix invalidated", logging.String("prefix", match), logging.Int64("deleted", deleted))
	return deleted, nil
}

// Ping checks the connection.
func (c *ScoreCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx)
}
