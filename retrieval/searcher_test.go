package retrieval

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/poiesic/docgraph/ai"
	"github.com/poiesic/docgraph/ai/mock"
	"github.com/poiesic/docgraph/cache"
	"github.com/poiesic/docgraph/core"
	"github.com/poiesic/docgraph/storage"
	badgerstore "github.com/poiesic/docgraph/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDim = 4

func newTestStore(t *testing.T) *badgerstore.GraphStore {
	t.Helper()
	store, err := badgerstore.NewMemoryStore(badgerstore.WithDimension(testDim))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestEmbedder() *mock.Embedder {
	return &mock.Embedder{Dimension: testDim}
}

func seedDocuments(t *testing.T, store storage.GraphStore, texts map[string][]string) {
	t.Helper()
	var batch []storage.DocumentInsert
	for docID, chunkTexts := range texts {
		chunks := make([]core.Chunk, len(chunkTexts))
		for i, text := range chunkTexts {
			chunks[i] = core.Chunk{
				DocID:     docID,
				Index:     i,
				Text:      text,
				Embedding: mock.DeterministicVector(text, testDim),
			}
		}
		batch = append(batch, storage.DocumentInsert{
			Document: core.Document{
				Id:       docID,
				Content:  "content of " + docID,
				Metadata: map[string]string{"source": docID + ".txt"},
			},
			Chunks: chunks,
		})
	}
	require.NoError(t, store.BatchInsert(context.Background(), batch))
}

func newTestSearcher(t *testing.T, store storage.GraphStore, embedder ai.Embedder, opts ...Option) *Searcher {
	t.Helper()
	opts = append([]Option{WithDimension(testDim)}, opts...)
	searcher, err := NewSearcher(store, embedder, opts...)
	require.NoError(t, err)
	t.Cleanup(searcher.Release)
	return searcher
}

func TestNewSearcher(t *testing.T) {
	store := newTestStore(t)
	embedder := newTestEmbedder()

	t.Run("valid configuration", func(t *testing.T) {
		searcher, err := NewSearcher(store, embedder, WithDimension(testDim))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
		searcher.Release()
	})

	t.Run("nil store", func(t *testing.T) {
		_, err := NewSearcher(nil, embedder)
		assert.Equal(t, ErrStoreRequired, err)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewSearcher(store, nil)
		assert.Equal(t, ErrEmbedderRequired, err)
	})

	t.Run("invalid dimension", func(t *testing.T) {
		_, err := NewSearcher(store, embedder, WithDimension(0))
		assert.ErrorIs(t, err, core.ErrDimensionMismatch)
	})
}

func TestSearch_Validation(t *testing.T) {
	searcher := newTestSearcher(t, newTestStore(t), newTestEmbedder())
	ctx := context.Background()

	t.Run("non-positive k", func(t *testing.T) {
		_, err := searcher.Search(ctx, "query", 0, core.ModeVector)
		assert.ErrorIs(t, err, core.ErrInvalidLimit)
	})

	t.Run("unknown mode", func(t *testing.T) {
		_, err := searcher.Search(ctx, "query", 5, core.SearchMode("fuzzy"))
		assert.ErrorIs(t, err, core.ErrInvalidSearchMode)
	})
}

func TestSearch_VectorMode(t *testing.T) {
	store := newTestStore(t)
	seedDocuments(t, store, map[string][]string{
		"doc-ml":   {"Machine learning models require training data."},
		"doc-cook": {"Pasta should be cooked al dente."},
	})
	searcher := newTestSearcher(t, store, newTestEmbedder())
	ctx := context.Background()

	t.Run("self similarity wins", func(t *testing.T) {
		// The mock embeds identical text to the identical vector, so
		// querying with a chunk's own text must rank that chunk first.
		results, err := searcher.Search(ctx, "Machine learning models require training data.", 2, core.ModeVector)
		require.NoError(t, err)
		require.NotEmpty(t, results)
		assert.Equal(t, "doc-ml", results[0].DocID)
		assert.InDelta(t, 1.0, float64(results[0].Score), 1e-5)
		assert.Equal(t, "doc-ml.txt", results[0].Metadata["source"])
	})

	t.Run("empty store yields empty result", func(t *testing.T) {
		empty := newTestStore(t)
		s := newTestSearcher(t, empty, newTestEmbedder())
		results, err := s.Search(ctx, "anything", 5, core.ModeVector)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestSearch_KeywordMode(t *testing.T) {
	store := newTestStore(t)
	seedDocuments(t, store, map[string][]string{
		"doc-graph": {"Neo4j is a graph database.", "It stores nodes and relationships."},
	})
	searcher := newTestSearcher(t, store, newTestEmbedder())
	ctx := context.Background()

	results, err := searcher.Search(ctx, "graph database", 1, core.ModeKeyword)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Neo4j is a graph database.", results[0].Text)
	assert.Equal(t, float32(storage.FallbackSubstringScore), results[0].Score)
}

func TestSearch_HybridMode(t *testing.T) {
	store := newTestStore(t)
	seedDocuments(t, store, map[string][]string{
		"doc-graph": {"Neo4j is a graph database."},
		"doc-ml":    {"Machine learning models require training data."},
	})
	searcher := newTestSearcher(t, store, newTestEmbedder())
	ctx := context.Background()

	t.Run("includes literal matches", func(t *testing.T) {
		results, err := searcher.Search(ctx, "graph database", 5, core.ModeHybrid)
		require.NoError(t, err)
		require.NotEmpty(t, results)

		texts := make([]string, len(results))
		for i, r := range results {
			texts[i] = r.Text
		}
		assert.Contains(t, texts, "Neo4j is a graph database.")
	})

	t.Run("embedder failure fails the search", func(t *testing.T) {
		failing := newTestEmbedder()
		failing.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return nil, fmt.Errorf("%w: provider offline", ai.ErrEncodingFailed)
		}
		s := newTestSearcher(t, store, failing)

		_, err := s.Search(ctx, "graph database", 5, core.ModeHybrid)
		assert.ErrorIs(t, err, ai.ErrEncodingFailed)
	})
}

func TestSearch_QueryCacheShortCircuit(t *testing.T) {
	store := newTestStore(t)
	seedDocuments(t, store, map[string][]string{
		"doc-graph": {"Neo4j is a graph database."},
	})
	embedder := newTestEmbedder()
	searcher := newTestSearcher(t, store, embedder)
	ctx := context.Background()

	first, err := searcher.Search(ctx, "graph database", 5, core.ModeVector)
	require.NoError(t, err)
	callsAfterFirst := embedder.CallCount()

	second, err := searcher.Search(ctx, "graph database", 5, core.ModeVector)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, callsAfterFirst, embedder.CallCount(), "cached search must not reach the provider")

	// Same text, different k: a distinct cache key, but the query embedding
	// itself is still cached.
	_, err = searcher.Search(ctx, "graph database", 3, core.ModeVector)
	require.NoError(t, err)
	assert.Equal(t, callsAfterFirst, embedder.CallCount())
}

func TestEmbedQuery(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("result is unit length and cached", func(t *testing.T) {
		embedder := newTestEmbedder()
		searcher := newTestSearcher(t, store, embedder)

		vector, err := searcher.EmbedQuery(ctx, "some query")
		require.NoError(t, err)
		require.Len(t, vector, testDim)

		var sum float64
		for _, v := range vector {
			sum += float64(v) * float64(v)
		}
		assert.InDelta(t, 1.0, sum, 1e-5)

		_, err = searcher.EmbedQuery(ctx, "some query")
		require.NoError(t, err)
		assert.Equal(t, 1, embedder.CallCount())
	})

	t.Run("wrong dimension from provider is fatal", func(t *testing.T) {
		embedder := newTestEmbedder()
		embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return make([]float32, testDim+1), nil
		}
		searcher := newTestSearcher(t, store, embedder)

		_, err := searcher.EmbedQuery(ctx, "query")
		assert.ErrorIs(t, err, core.ErrDimensionMismatch)
	})

	t.Run("provider error is not masked", func(t *testing.T) {
		embedder := newTestEmbedder()
		providerErr := errors.New("connection refused")
		embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return nil, fmt.Errorf("%w: %w", ai.ErrEncodingFailed, providerErr)
		}
		searcher := newTestSearcher(t, store, embedder)

		vector, err := searcher.EmbedQuery(ctx, "query")
		assert.Nil(t, vector, "no fabricated vector on failure")
		assert.ErrorIs(t, err, ai.ErrEncodingFailed)
	})
}

func TestSearch_SharedCaches(t *testing.T) {
	store := newTestStore(t)
	seedDocuments(t, store, map[string][]string{
		"doc-graph": {"Neo4j is a graph database."},
	})

	embeddingCache, err := cache.NewEmbeddingCache(8)
	require.NoError(t, err)
	queryCache, err := cache.NewQueryCache(8)
	require.NoError(t, err)

	searcher := newTestSearcher(t, store, newTestEmbedder(),
		WithEmbeddingCache(embeddingCache),
		WithQueryCache(queryCache))

	_, err = searcher.Search(context.Background(), "graph database", 5, core.ModeVector)
	require.NoError(t, err)

	assert.Equal(t, 1, queryCache.Len())
	assert.Equal(t, 1, embeddingCache.Len())
}
