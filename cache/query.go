package cache

import (
	"strings"
	"sync"

	"github.com/poiesic/docgraph/core"
)

// DefaultQueryCacheCapacity bounds the query cache when no capacity is
// configured.
const DefaultQueryCacheCapacity = 100

// QueryCache is a thread-safe, fixed-capacity cache of ranked result lists,
// keyed by (normalized query, k, mode). Each search mode has its own key
// namespace, so a cached vector-only result is never returned for a hybrid
// request. Eviction is FIFO, deliberately simpler than the embedding cache's
// LRU.
type QueryCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[queryKey][]core.SearchResult
	order    []queryKey // insertion order, oldest first
}

type queryKey struct {
	query string
	k     int
	mode  core.SearchMode
}

// NewQueryCache creates a query cache with the given capacity.
func NewQueryCache(capacity int) (*QueryCache, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &QueryCache{
		capacity: capacity,
		entries:  make(map[queryKey][]core.SearchResult, capacity),
	}, nil
}

// Get returns the cached results for (query, k, mode), or false on a miss.
// The returned slice is a copy of the cached list.
func (c *QueryCache) Get(query string, k int, mode core.SearchMode) ([]core.SearchResult, bool) {
	key := makeQueryKey(query, k, mode)

	c.mu.Lock()
	defer c.mu.Unlock()

	results, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	out := make([]core.SearchResult, len(results))
	copy(out, results)
	return out, true
}

// Put caches the results for (query, k, mode), copying the list. When the
// cache is full the oldest entry is evicted first.
func (c *QueryCache) Put(query string, k int, mode core.SearchMode, results []core.SearchResult) {
	key := makeQueryKey(query, k, mode)

	stored := make([]core.SearchResult, len(results))
	copy(stored, results)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		// Replace in place, keeping the original insertion position.
		c.entries[key] = stored
		return
	}

	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = stored
	c.order = append(c.order, key)
}

// Clear drops every cached entry. Called after ingestion so stale rankings
// are never served for new content.
func (c *QueryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[queryKey][]core.SearchResult, c.capacity)
	c.order = nil
}

// Len returns the current number of cached entries.
func (c *QueryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func makeQueryKey(query string, k int, mode core.SearchMode) queryKey {
	return queryKey{
		query: strings.ToLower(strings.TrimSpace(query)),
		k:     k,
		mode:  mode,
	}
}
