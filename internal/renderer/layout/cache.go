package layout

import "container/list"

// DefaultCacheSize is the number of lines whose segments are kept.
const DefaultCacheSize = 500

// LineCache caches computed line segments with LRU eviction.
type LineCache struct {
	entries   map[int]*list.Element
	order     *list.List // front = most recently used
	maxSize   int
	hits      uint64
	misses    uint64
	evictions uint64
}

type cacheEntry struct {
	line     int
	segments []Segment
}

// NewLineCache creates a new line cache.
// maxSize is the maximum number of lines to cache; values < 1 use
// DefaultCacheSize.
func NewLineCache(maxSize int) *LineCache {
	if maxSize < 1 {
		maxSize = DefaultCacheSize
	}
	return &LineCache{
		entries: make(map[int]*list.Element),
		order:   list.New(),
		maxSize: maxSize,
	}
}

// Get returns the cached segments for line and marks it recently used.
func (c *LineCache) Get(line int) ([]Segment, bool) {
	el, ok := c.entries[line]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).segments, true
}

// Put stores the segments for line, evicting the least recently used
// entry when the cache is full.
func (c *LineCache) Put(line int, segments []Segment) {
	if el, ok := c.entries[line]; ok {
		el.Value.(*cacheEntry).segments = segments
		c.order.MoveToFront(el)
		return
	}

	c.entries[line] = c.order.PushFront(&cacheEntry{line: line, segments: segments})
	for len(c.entries) > c.maxSize {
		oldest := c.order.Back()
		c.remove(oldest)
		c.evictions++
	}
}

// Invalidate drops the entry for line.
func (c *LineCache) Invalidate(line int) {
	if el, ok := c.entries[line]; ok {
		c.remove(el)
	}
}

// InvalidateRange drops the entries for lines in [startLine, endLine].
func (c *LineCache) InvalidateRange(startLine, endLine int) {
	if startLine > endLine {
		return
	}
	// Walk whichever is smaller: the range or the cache.
	if endLine-startLine+1 <= len(c.entries) {
		for line := startLine; line <= endLine; line++ {
			c.Invalidate(line)
		}
		return
	}
	for line, el := range c.entries {
		if line >= startLine && line <= endLine {
			c.remove(el)
		}
	}
}

// InvalidateFrom drops every entry at or after startLine.
// Used when lines are inserted or deleted and all following lines shift.
func (c *LineCache) InvalidateFrom(startLine int) {
	for line, el := range c.entries {
		if line >= startLine {
			c.remove(el)
		}
	}
}

// InvalidateAll clears the entire cache.
func (c *LineCache) InvalidateAll() {
	c.entries = make(map[int]*list.Element)
	c.order.Init()
}

func (c *LineCache) remove(el *list.Element) {
	delete(c.entries, el.Value.(*cacheEntry).line)
	c.order.Remove(el)
}

// Size returns the number of cached entries.
func (c *LineCache) Size() int {
	return len(c.entries)
}

// Stats returns cache statistics.
func (c *LineCache) Stats() CacheStats {
	total := c.hits + c.misses

	var hitRate float64
	if total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}

	return CacheStats{
		Size:      len(c.entries),
		MaxSize:   c.maxSize,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		HitRate:   hitRate,
	}
}

// ResetStats resets the cache statistics counters.
func (c *LineCache) ResetStats() {
	c.hits = 0
	c.misses = 0
	c.evictions = 0
}

// CacheStats holds cache statistics.
type CacheStats struct {
	Size      int     // Current number of entries
	MaxSize   int     // Maximum entries allowed
	Hits      uint64  // Number of cache hits
	Misses    uint64  // Number of cache misses
	Evictions uint64  // Number of evicted entries
	HitRate   float64 // Hit rate (0.0 - 1.0)
}
