package highlightcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type exampleStruct struct {
	ID   int
	Name string
}

func TestNewInMemoryManagerDoesNotPanic(t *testing.T) {
	require.NotPanics(t, func() {
		NewInMemoryManager[Key, string]("test", DefaultExpiration, DefaultCleanupInterval)
	})
}

func TestInMemoryManagerGetExistingValueStructType(t *testing.T) {
	cache := NewInMemoryManager[Key, exampleStruct]("food-cache", DefaultExpiration, DefaultCleanupInterval)
	example := exampleStruct{Name: "apple"}
	cache.Set(context.Background(), Key("ex:1"), example, DefaultExpiration)

	got, ok := cache.Get(context.Background(), Key("ex:1"))
	require.True(t, ok)
	require.Equal(t, example, got)
}

func TestInMemoryManagerGetMissingValue(t *testing.T) {
	cache := NewInMemoryManager[Key, string]("food-cache", DefaultExpiration, DefaultCleanupInterval)
	_, ok := cache.Get(context.Background(), Key("missing"))
	require.False(t, ok)
}

func TestInMemoryManagerGetMultiplePartialHit(t *testing.T) {
	cache := NewInMemoryManager[Key, string]("food-cache", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(context.Background(), Key("a"), "apple", DefaultExpiration)

	values, ok := cache.GetMultiple(context.Background(), []Key{"a", "b"})
	require.True(t, ok)
	require.Equal(t, map[Key]string{"a": "apple"}, values)
}

func TestInMemoryManagerGetMultipleAllMiss(t *testing.T) {
	cache := NewInMemoryManager[Key, string]("food-cache", DefaultExpiration, DefaultCleanupInterval)
	values, ok := cache.GetMultiple(context.Background(), []Key{"a", "b"})
	require.False(t, ok)
	require.Nil(t, values)
}

func TestInMemoryManagerGetWithRefreshExtendsTTL(t *testing.T) {
	cache := NewInMemoryManager[Key, string]("food-cache", 20*time.Millisecond, DefaultCleanupInterval)
	cache.Set(context.Background(), Key("a"), "apple", 20*time.Millisecond)

	time.Sleep(10 * time.Millisecond)
	got, ok := cache.GetWithRefresh(context.Background(), Key("a"), 100*time.Millisecond)
	require.True(t, ok)
	require.Equal(t, "apple", got)

	time.Sleep(30 * time.Millisecond)
	_, ok = cache.Get(context.Background(), Key("a"))
	require.True(t, ok, "expected refreshed TTL to keep the entry alive past its original expiry")
}

func TestInMemoryManagerDeleteRemovesKey(t *testing.T) {
	cache := NewInMemoryManager[Key, string]("food-cache", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(context.Background(), Key("a"), "apple", DefaultExpiration)

	require.NoError(t, cache.Delete(context.Background(), Key("a")))
	_, ok := cache.Get(context.Background(), Key("a"))
	require.False(t, ok)
}

func TestInMemoryManagerFlushClearsEverything(t *testing.T) {
	cache := NewInMemoryManager[Key, string]("food-cache", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(context.Background(), Key("a"), "apple", DefaultExpiration)
	cache.Set(context.Background(), Key("b"), "banana", DefaultExpiration)

	require.NoError(t, cache.Flush(context.Background()))
	_, ok := cache.Get(context.Background(), Key("a"))
	require.False(t, ok)
	_, ok = cache.Get(context.Background(), Key("b"))
	require.False(t, ok)
}
