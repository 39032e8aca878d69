package cache

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmbeddingCache(t *testing.T) {
	t.Run("valid capacity", func(t *testing.T) {
		c, err := NewEmbeddingCache(10)
		require.NoError(t, err)
		assert.NotNil(t, c)
	})

	t.Run("zero capacity", func(t *testing.T) {
		_, err := NewEmbeddingCache(0)
		assert.ErrorIs(t, err, ErrInvalidCapacity)
	})

	t.Run("negative capacity", func(t *testing.T) {
		_, err := NewEmbeddingCache(-1)
		assert.ErrorIs(t, err, ErrInvalidCapacity)
	})
}

func TestEmbeddingCache_PutGet(t *testing.T) {
	c, err := NewEmbeddingCache(4)
	require.NoError(t, err)

	t.Run("miss on empty cache", func(t *testing.T) {
		_, ok := c.Get("nothing here")
		assert.False(t, ok)
	})

	t.Run("hit after put", func(t *testing.T) {
		c.Put("hello", []float32{0.1, 0.2})
		vector, ok := c.Get("hello")
		require.True(t, ok)
		assert.Equal(t, []float32{0.1, 0.2}, vector)
	})

	t.Run("put replaces existing entry", func(t *testing.T) {
		c.Put("hello", []float32{0.9, 0.9})
		vector, ok := c.Get("hello")
		require.True(t, ok)
		assert.Equal(t, []float32{0.9, 0.9}, vector)
		assert.Equal(t, 1, c.Len())
	})
}

func TestEmbeddingCache_DefensiveCopies(t *testing.T) {
	c, err := NewEmbeddingCache(4)
	require.NoError(t, err)

	t.Run("mutating the stored slice after Put", func(t *testing.T) {
		input := []float32{1, 2, 3}
		c.Put("a", input)
		input[0] = 99

		vector, ok := c.Get("a")
		require.True(t, ok)
		assert.Equal(t, float32(1), vector[0])
	})

	t.Run("mutating the returned slice after Get", func(t *testing.T) {
		vector, ok := c.Get("a")
		require.True(t, ok)
		vector[1] = 99

		again, ok := c.Get("a")
		require.True(t, ok)
		assert.Equal(t, float32(2), again[1])
	})
}

func TestEmbeddingCache_LRUEviction(t *testing.T) {
	c, err := NewEmbeddingCache(2)
	require.NoError(t, err)

	// Fill the cache, refresh "a" with a read, then overflow: the read must
	// have made "b" the eviction victim.
	c.Put("a", []float32{1})
	c.Put("b", []float32{2})

	_, ok := c.Get("a")
	require.True(t, ok)

	c.Put("c", []float32{3})

	_, ok = c.Get("a")
	assert.True(t, ok, "recently read entry must survive")
	_, ok = c.Get("c")
	assert.True(t, ok, "newest entry must survive")
	_, ok = c.Get("b")
	assert.False(t, ok, "least recently used entry must be evicted")
	assert.Equal(t, 2, c.Len())
}

func TestEmbeddingCache_PutRefreshesRecency(t *testing.T) {
	c, err := NewEmbeddingCache(2)
	require.NoError(t, err)

	c.Put("a", []float32{1})
	c.Put("b", []float32{2})
	c.Put("a", []float32{1.5}) // refresh "a"
	c.Put("c", []float32{3})   // evicts "b"

	_, ok := c.Get("b")
	assert.False(t, ok)
	vector, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, []float32{1.5}, vector)
}

func TestEmbeddingCache_Stats(t *testing.T) {
	c, err := NewEmbeddingCache(8)
	require.NoError(t, err)

	stats := c.Stats()
	assert.Equal(t, 0, stats.Size)
	assert.Equal(t, float64(0), stats.HitRatePercent)

	c.Put("x", []float32{1})
	c.Get("x")       // hit
	c.Get("x")       // hit
	c.Get("missing") // miss
	c.Get("missing") // miss

	stats = c.Stats()
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, uint64(2), stats.Hits)
	assert.Equal(t, uint64(2), stats.Misses)
	assert.InDelta(t, 50.0, stats.HitRatePercent, 1e-9)
}

func TestEmbeddingCache_Concurrent(t *testing.T) {
	c, err := NewEmbeddingCache(16)
	require.NoError(t, err)

	done := make(chan struct{})
	for g := 0; g < 4; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("key-%d-%d", g, i%8)
				c.Put(key, []float32{float32(i)})
				c.Get(key)
			}
		}(g)
	}
	for g := 0; g < 4; g++ {
		<-done
	}
	assert.LessOrEqual(t, c.Len(), 16)
}
