package highlightcache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/nels-koby/glint/internal/log"
)

// DefaultExpiration is used when an entry is Set with no specific TTL
// override available (go-cache's sentinel for "use the cache's default").
const DefaultExpiration = gocache.DefaultExpiration

// DefaultCleanupInterval is how often go-cache sweeps expired entries.
const DefaultCleanupInterval = 1 * time.Minute

// InMemoryManager is a Manager backed by an in-process go-cache.Cache.
type InMemoryManager[K ~string, V any] struct {
	useCase string
	cache   *gocache.Cache
}

// NewInMemoryManager creates an InMemoryManager with the given default
// expiration and cleanup sweep interval. useCase is a label used only in
// log lines, to disambiguate multiple caches in the same process.
func NewInMemoryManager[K ~string, V any](useCase string, defaultExpiration, cleanupInterval time.Duration) *InMemoryManager[K, V] {
	return &InMemoryManager[K, V]{
		useCase: useCase,
		cache:   gocache.New(defaultExpiration, cleanupInterval),
	}
}

// Get retrieves an item from the cache by its key.
func (c *InMemoryManager[K, V]) Get(ctx context.Context, key K) (V, bool) {
	var zero V

	value, found := c.cache.Get(string(key))
	if !found {
		return zero, false
	}

	v, ok := value.(V)
	if !ok {
		log.Error(log.CatCache, "wrong type assertion when getting value", "use_case", c.useCase, "key", string(key))
		return zero, false
	}

	log.Debug(log.CatCache, "cache hit", "use_case", c.useCase, "key", string(key))
	return v, true
}

// GetMultiple looks up several keys at once, returning only the keys
// found (and logging the ones that weren't). ok is false only if every
// key missed.
func (c *InMemoryManager[K, V]) GetMultiple(ctx context.Context, keys []K) (map[K]V, bool) {
	if len(keys) == 0 {
		return nil, false
	}

	values := make(map[K]V, len(keys))
	var missing []K
	for _, key := range keys {
		if v, ok := c.Get(ctx, key); ok {
			values[key] = v
		} else {
			missing = append(missing, key)
		}
	}

	if len(values) == 0 {
		return nil, false
	}
	if len(missing) > 0 {
		log.Debug(log.CatCache, "partial cache miss", "use_case", c.useCase, "missing", len(missing))
	}
	return values, true
}

// GetWithRefresh returns the cached value for key, if present, and
// extends its expiration to ttl.
func (c *InMemoryManager[K, V]) GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool) {
	value, found := c.Get(ctx, key)
	if !found {
		return value, false
	}
	c.Set(ctx, key, value, ttl)
	return value, true
}

// Set stores value under key with the given TTL (DefaultExpiration
// reuses the cache's configured default).
func (c *InMemoryManager[K, V]) Set(ctx context.Context, key K, value V, ttl time.Duration) {
	c.cache.Set(string(key), value, ttl)
}

// Delete removes the given keys from the cache.
func (c *InMemoryManager[K, V]) Delete(ctx context.Context, keys ...K) error {
	for _, key := range keys {
		c.cache.Delete(string(key))
	}
	return nil
}

// Flush empties the cache entirely.
func (c *InMemoryManager[K, V]) Flush(ctx context.Context) error {
	c.cache.Flush()
	return nil
}
