// Package highlightcache memoizes composed highlight-event streams
// (internal/highlight's Overlay output) behind a TTL cache keyed by the
// char range and overlay generation that produced them, so a renderer
// scrolling back over unchanged text doesn't re-walk the syntax/overlay
// merge on every frame.
//
// Manager[K, V]'s methods are declared over K throughout so the
// generic contract holds for any `K ~string`, rather than hardcoding a
// `string` key parameter that would only happen to type-check for
// whichever K a given instantiation uses.
package highlightcache

import (
	"context"
	"time"
)

// Manager is a generic, TTL-aware cache of V keyed by K.
type Manager[K comparable, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	GetMultiple(ctx context.Context, keys []K) (map[K]V, bool)
	GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	Flush(ctx context.Context) error
}
