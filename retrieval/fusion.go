package retrieval

import (
	"sort"

	"github.com/poiesic/docgraph/core"
)

// dedupKeyLength is how many characters of chunk text form the merge key.
// Two chunks sharing their first 100 characters are treated as the same
// content; this is an approximate de-duplication, good enough for overlapping
// chunks of the same source text.
const dedupKeyLength = 100

// fuseResults merges the vector and keyword result lists into one ranked
// list of at most k entries. On a key collision the higher-scoring entry
// wins. Vector and keyword scores are compared on their native scales; they
// are deliberately not normalized to a common one.
func fuseResults(vector, keyword []core.SearchResult, k int) []core.SearchResult {
	merged := make(map[string]core.SearchResult, len(vector)+len(keyword))
	order := make([]string, 0, len(vector)+len(keyword))

	for _, list := range [][]core.SearchResult{vector, keyword} {
		for _, result := range list {
			key := dedupKey(result.Text)
			existing, ok := merged[key]
			if !ok {
				merged[key] = result
				order = append(order, key)
				continue
			}
			if result.Score > existing.Score {
				merged[key] = result
			}
		}
	}

	results := make([]core.SearchResult, 0, len(merged))
	for _, key := range order {
		results = append(results, merged[key])
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results
}

func dedupKey(text string) string {
	runes := []rune(text)
	if len(runes) > dedupKeyLength {
		runes = runes[:dedupKeyLength]
	}
	return string(runes)
}
