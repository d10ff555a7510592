package highlightcache

import (
	"context"
	"fmt"
	"time"

	"github.com/nels-koby/glint/internal/highlight"
)

// Key identifies a cached, fully composed highlight-event stream: the
// half-open char range it covers, plus the overlay generation it was
// composed against (bumped whenever TextAnnotations' overlay layers
// change), so a stale entry from before an annotation edit is never
// served after the edit.
type Key string

// NewKey builds the Key for a char range composed against a given
// overlay generation.
func NewKey(startChar, endChar int, generation uint64) Key {
	return Key(fmt.Sprintf("%d:%d:%d", startChar, endChar, generation))
}

// EventCache memoizes materialized highlight-event slices for reuse as
// highlight.EventSource values.
type EventCache struct {
	manager Manager[Key, []highlight.HighlightEvent]
	ttl     time.Duration
}

// New creates an EventCache with the given per-entry TTL and cleanup
// sweep interval.
func New(ttl, cleanupInterval time.Duration) *EventCache {
	return &EventCache{
		manager: NewInMemoryManager[Key, []highlight.HighlightEvent]("highlight-overlay", ttl, cleanupInterval),
		ttl:     ttl,
	}
}

// Get returns the cached event stream for key, if present and unexpired.
func (c *EventCache) Get(key Key) (highlight.EventSource, bool) {
	events, ok := c.manager.Get(context.Background(), key)
	if !ok {
		return nil, false
	}
	return highlight.NewEventSlice(events), true
}

// Set materializes source into a slice (EventSource values are
// single-pass, so the cache must drain it once to store it) and caches
// it under key, returning a fresh EventSource over the same events so
// the caller can still consume what it just handed in.
func (c *EventCache) Set(key Key, source highlight.EventSource) highlight.EventSource {
	var events []highlight.HighlightEvent
	for {
		e, ok := source.Next()
		if !ok {
			break
		}
		events = append(events, e)
	}
	c.manager.Set(context.Background(), key, events, c.ttl)
	return highlight.NewEventSlice(events)
}

// Invalidate drops every cached entry. Callers bump the overlay
// generation baked into Key on every annotation mutation, which makes
// old keys simply unreachable rather than needing targeted eviction;
// Invalidate exists for callers that want to reclaim memory immediately
// (e.g. closing a document) rather than waiting for TTL expiry.
func (c *EventCache) Invalidate() error {
	return c.manager.Flush(context.Background())
}
