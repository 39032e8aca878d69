package cache

import (
	"container/list"
	"errors"
	"sync"

	"github.com/poiesic/docgraph/core"
)

// ErrInvalidCapacity indicates a non-positive cache capacity.
var ErrInvalidCapacity = errors.New("cache capacity must be positive")

// EmbeddingCache is a thread-safe, fixed-capacity LRU cache mapping text to
// its embedding vector. Keys are BLAKE2b digests of the text, so the cache
// never retains the raw text itself. On overflow the least-recently-used
// entry is evicted; a Get refreshes recency.
type EmbeddingCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	order    *list.List // front = most recently used
	hits     uint64
	misses   uint64
}

type embeddingEntry struct {
	key    string
	vector []float32
}

// EmbeddingCacheStats is a point-in-time snapshot of cache effectiveness.
type EmbeddingCacheStats struct {
	Size           int
	Hits           uint64
	Misses         uint64
	HitRatePercent float64
}

// NewEmbeddingCache creates an embedding cache with the given capacity.
func NewEmbeddingCache(capacity int) (*EmbeddingCache, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &EmbeddingCache{
		capacity: capacity,
		entries:  make(map[string]*list.Element, capacity),
		order:    list.New(),
	}, nil
}

// Get returns the cached embedding for text, or false on a miss.
// The returned vector is a copy; callers may not reach the internal buffer.
func (c *EmbeddingCache) Get(text string) ([]float32, bool) {
	key := core.HashText(text)

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.order.MoveToFront(elem)

	vector := elem.Value.(*embeddingEntry).vector
	out := make([]float32, len(vector))
	copy(out, vector)
	return out, true
}

// Put stores the embedding for text, copying the vector. If the key already
// exists its vector is replaced and its recency refreshed. When the cache is
// full the least-recently-used entry is evicted.
func (c *EmbeddingCache) Put(text string, vector []float32) {
	key := core.HashText(text)

	stored := make([]float32, len(vector))
	copy(stored, vector)

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		elem.Value.(*embeddingEntry).vector = stored
		c.order.MoveToFront(elem)
		return
	}

	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*embeddingEntry).key)
		}
	}

	c.entries[key] = c.order.PushFront(&embeddingEntry{key: key, vector: stored})
}

// Len returns the current number of cached entries.
func (c *EmbeddingCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns a snapshot of size and hit/miss counters.
func (c *EmbeddingCache) Stats() EmbeddingCacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := EmbeddingCacheStats{
		Size:   c.order.Len(),
		Hits:   c.hits,
		Misses: c.misses,
	}
	if total := c.hits + c.misses; total > 0 {
		stats.HitRatePercent = float64(c.hits) / float64(total) * 100
	}
	return stats
}
