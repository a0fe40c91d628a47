package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seg(start, end int) []Segment {
	return []Segment{{Start: start, End: end}}
}

func TestNewLineCache(t *testing.T) {
	cache := NewLineCache(100)

	assert.Equal(t, 0, cache.Size(), "new cache should be empty")
	assert.Equal(t, 100, cache.Stats().MaxSize)
	assert.Equal(t, DefaultCacheSize, NewLineCache(0).Stats().MaxSize)
}

func TestLineCacheGetPut(t *testing.T) {
	cache := NewLineCache(100)

	_, ok := cache.Get(0)
	require.False(t, ok, "empty cache should miss")

	cache.Put(0, seg(0, 5))
	got, ok := cache.Get(0)
	require.True(t, ok, "Get should hit after Put")
	assert.Equal(t, []Segment{{0, 5}}, got)

	cache.Put(0, seg(0, 7))
	got, _ = cache.Get(0)
	assert.Equal(t, 7, got[0].End, "Put should replace")
	assert.Equal(t, 1, cache.Size())
}

func TestLineCacheInvalidate(t *testing.T) {
	cache := NewLineCache(100)
	cache.Put(0, seg(0, 1))
	cache.Put(1, seg(0, 1))

	cache.Invalidate(0)
	cache.Invalidate(42)

	_, ok := cache.Get(0)
	assert.False(t, ok, "line 0 should be invalidated")
	_, ok = cache.Get(1)
	assert.True(t, ok, "line 1 should remain cached")
}

func TestLineCacheInvalidateRange(t *testing.T) {
	cache := NewLineCache(100)
	for i := 0; i < 10; i++ {
		cache.Put(i, seg(0, i))
	}

	cache.InvalidateRange(3, 6)

	for i := 0; i < 10; i++ {
		_, ok := cache.Get(i)
		assert.Equal(t, i < 3 || i > 6, ok, "line %d", i)
	}
}

func TestLineCacheInvalidateRangeEdgeCases(t *testing.T) {
	cache := NewLineCache(100)
	cache.Put(5, seg(0, 1))

	// Reversed range is a no-op.
	cache.InvalidateRange(6, 4)
	assert.Equal(t, 1, cache.Size())

	// Range much larger than the cache walks the entries instead.
	cache.InvalidateRange(0, 1_000_000)
	assert.Equal(t, 0, cache.Size())
}

func TestLineCacheInvalidateFrom(t *testing.T) {
	cache := NewLineCache(100)
	for i := 0; i < 10; i++ {
		cache.Put(i, seg(0, i))
	}

	cache.InvalidateFrom(4)

	assert.Equal(t, 4, cache.Size())
	_, ok := cache.Get(3)
	assert.True(t, ok, "line 3 should remain cached")
	_, ok = cache.Get(4)
	assert.False(t, ok, "line 4 should be invalidated")
}

func TestLineCacheInvalidateAll(t *testing.T) {
	cache := NewLineCache(100)
	for i := 0; i < 10; i++ {
		cache.Put(i, seg(0, i))
	}

	cache.InvalidateAll()
	assert.Equal(t, 0, cache.Size())

	cache.Put(1, seg(0, 1))
	assert.Equal(t, 1, cache.Size(), "cache should be usable after InvalidateAll")
}

func TestLineCacheEviction(t *testing.T) {
	cache := NewLineCache(3)

	cache.Put(0, seg(0, 0))
	cache.Put(1, seg(0, 1))
	cache.Put(2, seg(0, 2))
	cache.Get(0) // 1 is now least recently used
	cache.Put(3, seg(0, 3))

	assert.Equal(t, 3, cache.Size(), "cache should not exceed max size")
	_, ok := cache.Get(1)
	assert.False(t, ok, "least recently used line should be evicted")
	for _, line := range []int{0, 2, 3} {
		_, ok := cache.Get(line)
		assert.True(t, ok, "line %d should remain cached", line)
	}
	assert.Equal(t, uint64(1), cache.Stats().Evictions)
}

func TestLineCacheStats(t *testing.T) {
	cache := NewLineCache(100)

	cache.Get(0) // Miss
	cache.Put(0, seg(0, 5))
	cache.Get(0) // Hit
	cache.Get(0) // Hit
	cache.Get(1) // Miss
	cache.Get(2) // Miss

	stats := cache.Stats()
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, uint64(2), stats.Hits)
	assert.Equal(t, uint64(3), stats.Misses)
	assert.InDelta(t, 0.4, stats.HitRate, 0.01)
}

func TestLineCacheResetStats(t *testing.T) {
	cache := NewLineCache(100)
	cache.Get(0)
	cache.Put(0, seg(0, 1))
	cache.Get(0)

	cache.ResetStats()

	stats := cache.Stats()
	assert.Zero(t, stats.Hits)
	assert.Zero(t, stats.Misses)
	assert.Zero(t, stats.Evictions)
	assert.Equal(t, 1, stats.Size, "ResetStats should keep entries")
}
