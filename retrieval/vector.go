package retrieval

import (
	"fmt"
	"sort"

	"github.com/poiesic/docgraph/core"
)

// VectorRanker ranks candidate chunks by cosine similarity to a query vector.
type VectorRanker struct{}

// Rank scores every candidate against queryVector and returns the top k by
// descending score. Ties keep candidate arrival order (stable sort); there is
// no secondary tie-break key. A candidate whose embedding dimensionality
// differs from the query's is a fatal precondition failure, never coerced.
// Zero-norm vectors on either side score 0 rather than erroring.
func (VectorRanker) Rank(queryVector []float32, candidates []core.Candidate, k int) ([]core.SearchResult, error) {
	if k <= 0 {
		return nil, core.ErrInvalidLimit
	}

	results := make([]core.SearchResult, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		if len(c.Embedding) != len(queryVector) {
			return nil, fmt.Errorf("%w: query has %d, chunk %q/%d has %d",
				core.ErrDimensionMismatch, len(queryVector), c.DocID, c.ChunkIndex, len(c.Embedding))
		}
		results = append(results, core.SearchResult{
			Text:       c.Text,
			Score:      core.CosineSimilarity(queryVector, c.Embedding),
			DocID:      c.DocID,
			ChunkIndex: c.ChunkIndex,
			Metadata:   c.DocMetadata,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}
