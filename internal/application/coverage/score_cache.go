package coverage

import (
	"context"
	"strings"
	"sync"
	"time"
)

// DefaultScoreTTL bounds the staleness of a cached result.
const DefaultScoreTTL = 5 * time.Minute

const (
	cacheRoot        = "coverage:"
	globalKeyPrefix  = cacheRoot + "global:"
	countryKeyPrefix = cacheRoot + "country:"

	cacheHit  = "hit"
	cacheMiss = "miss"

	scopeCountry  = "country"
	scopePlatform = "platform"
	scopeAll      = "all"
)

// GlobalKey is the cache key of a platform roll-up.
func GlobalKey(platformID string) string { return globalKeyPrefix + platformID }

// CountryKey is the cache key of one (platform, country) result.
func CountryKey(platformID, countryID string) string {
	return countryPrefix(platformID) + countryID
}

func countryPrefix(platformID string) string {
	return countryKeyPrefix + platformID + ":"
}

// ScoreCache memoizes encoded results.  Implementations store the bytes
// they are given, so two reads of a live entry are byte-identical.
// Concurrent misses may both compute; the last write wins.
type ScoreCache interface {
	// GetOrCompute returns the cached value of key or stores and returns
	// compute's output.  hit reports whether compute was skipped.
	GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(ctx context.Context) ([]byte, error)) (value []byte, hit bool, err error)
	// Invalidate drops the given keys.
	Invalidate(ctx context.Context, keys ...string) error
	// InvalidatePrefix drops every key starting with prefix.
	InvalidatePrefix(ctx context.Context, prefix string) error
}

// -----------------------------------------------------------------------
// In-process implementation
// -----------------------------------------------------------------------

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// MemoryScoreCache is a process-local ScoreCache.
type MemoryScoreCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryScoreCache returns an empty cache.  now may be nil.
func NewMemoryScoreCache(now func() time.Time) *MemoryScoreCache {
	if now == nil {
		now = time.Now
	}
	return &MemoryScoreCache{entries: make(map[string]memoryEntry), now: now}
}

func (c *MemoryScoreCache) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(ctx context.Context) ([]byte, error)) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && c.now().Before(e.expires) {
		return e.value, true, nil
	}

	value, err := compute(ctx)
	if err != nil {
		return nil, false, err
	}
	c.mu.Lock()
	c.entries[key] = memoryEntry{value: value, expires: c.now().Add(ttl)}
	c.mu.Unlock()
	return value, false, nil
}

func (c *MemoryScoreCache) Invalidate(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

func (c *MemoryScoreCache) InvalidatePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (c *MemoryScoreCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
