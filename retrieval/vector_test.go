package retrieval

import (
	"testing"

	"github.com/poiesic/docgraph/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(docID string, index int, text string, embedding ...float32) core.Candidate {
	return core.Candidate{
		Text:        text,
		Embedding:   embedding,
		ChunkIndex:  index,
		DocID:       docID,
		DocMetadata: map[string]string{"source": docID + ".txt"},
	}
}

func TestVectorRanker_Rank(t *testing.T) {
	query := []float32{1, 0, 0}

	t.Run("sorted by descending similarity", func(t *testing.T) {
		candidates := []core.Candidate{
			candidate("doc-a", 0, "far", 0, 1, 0),
			candidate("doc-a", 1, "close", 0.9, 0.1, 0),
			candidate("doc-b", 0, "exact", 1, 0, 0),
		}

		results, err := VectorRanker{}.Rank(query, candidates, 3)
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "exact", results[0].Text)
		assert.Equal(t, "close", results[1].Text)
		assert.Equal(t, "far", results[2].Text)
		assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
		assert.GreaterOrEqual(t, results[1].Score, results[2].Score)
	})

	t.Run("k bounds the result", func(t *testing.T) {
		candidates := []core.Candidate{
			candidate("doc-a", 0, "one", 1, 0, 0),
			candidate("doc-a", 1, "two", 0.5, 0.5, 0),
			candidate("doc-a", 2, "three", 0, 1, 0),
		}

		results, err := VectorRanker{}.Rank(query, candidates, 2)
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("fewer candidates than k", func(t *testing.T) {
		candidates := []core.Candidate{candidate("doc-a", 0, "only", 1, 0, 0)}
		results, err := VectorRanker{}.Rank(query, candidates, 10)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("empty candidates", func(t *testing.T) {
		results, err := VectorRanker{}.Rank(query, nil, 5)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("carries metadata and identity", func(t *testing.T) {
		candidates := []core.Candidate{candidate("doc-z", 7, "hit", 1, 0, 0)}
		results, err := VectorRanker{}.Rank(query, candidates, 1)
		require.NoError(t, err)
		assert.Equal(t, "doc-z", results[0].DocID)
		assert.Equal(t, 7, results[0].ChunkIndex)
		assert.Equal(t, "doc-z.txt", results[0].Metadata["source"])
	})

	t.Run("zero-norm chunk scores zero", func(t *testing.T) {
		candidates := []core.Candidate{
			candidate("doc-a", 0, "zero", 0, 0, 0),
			candidate("doc-a", 1, "nonzero", 1, 0, 0),
		}

		results, err := VectorRanker{}.Rank(query, candidates, 2)
		require.NoError(t, err)
		assert.Equal(t, "nonzero", results[0].Text)
		assert.Equal(t, float32(0), results[1].Score)
	})

	t.Run("dimension mismatch is fatal", func(t *testing.T) {
		candidates := []core.Candidate{candidate("doc-a", 0, "bad", 1, 0)}
		_, err := VectorRanker{}.Rank(query, candidates, 1)
		assert.ErrorIs(t, err, core.ErrDimensionMismatch)
	})

	t.Run("non-positive k", func(t *testing.T) {
		_, err := VectorRanker{}.Rank(query, nil, 0)
		assert.ErrorIs(t, err, core.ErrInvalidLimit)
	})

	t.Run("ties keep arrival order", func(t *testing.T) {
		candidates := []core.Candidate{
			candidate("doc-a", 0, "first", 1, 0, 0),
			candidate("doc-a", 1, "second", 1, 0, 0),
		}

		results, err := VectorRanker{}.Rank(query, candidates, 2)
		require.NoError(t, err)
		assert.Equal(t, "first", results[0].Text)
		assert.Equal(t, "second", results[1].Text)
	})
}

func TestKeywordRanker_Rank(t *testing.T) {
	t.Run("sorted by store score", func(t *testing.T) {
		hits := []core.SearchResult{
			{Text: "weak", Score: 0.2},
			{Text: "strong", Score: 0.9},
			{Text: "middle", Score: 0.5},
		}

		results, err := KeywordRanker{}.Rank(hits, 3)
		require.NoError(t, err)
		assert.Equal(t, "strong", results[0].Text)
		assert.Equal(t, "middle", results[1].Text)
		assert.Equal(t, "weak", results[2].Text)
	})

	t.Run("constant fallback scores keep arrival order", func(t *testing.T) {
		hits := []core.SearchResult{
			{Text: "first", Score: 0.5},
			{Text: "second", Score: 0.5},
			{Text: "third", Score: 0.5},
		}

		results, err := KeywordRanker{}.Rank(hits, 3)
		require.NoError(t, err)
		assert.Equal(t, "first", results[0].Text)
		assert.Equal(t, "second", results[1].Text)
		assert.Equal(t, "third", results[2].Text)
	})

	t.Run("k bounds the result", func(t *testing.T) {
		hits := []core.SearchResult{
			{Text: "a", Score: 0.5},
			{Text: "b", Score: 0.5},
		}

		results, err := KeywordRanker{}.Rank(hits, 1)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("does not mutate input order", func(t *testing.T) {
		hits := []core.SearchResult{
			{Text: "low", Score: 0.1},
			{Text: "high", Score: 0.9},
		}

		_, err := KeywordRanker{}.Rank(hits, 2)
		require.NoError(t, err)
		assert.Equal(t, "low", hits[0].Text)
	})

	t.Run("non-positive k", func(t *testing.T) {
		_, err := KeywordRanker{}.Rank(nil, -1)
		assert.ErrorIs(t, err, core.ErrInvalidLimit)
	})
}
