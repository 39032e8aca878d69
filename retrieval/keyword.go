package retrieval

import (
	"sort"

	"github.com/poiesic/docgraph/core"
)

// KeywordRanker ranks full-text hits by the relevance score the store
// assigned them. When the store served the substring fallback, every hit
// carries the same constant score and the ranking degrades to arrival order;
// that lack of differentiation is a documented limitation of the fallback,
// not something to correct here.
type KeywordRanker struct{}

// Rank returns the top k hits by descending store score, ties keeping
// arrival order.
func (KeywordRanker) Rank(hits []core.SearchResult, k int) ([]core.SearchResult, error) {
	if k <= 0 {
		return nil, core.ErrInvalidLimit
	}

	results := make([]core.SearchResult, len(hits))
	copy(results, hits)

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}
