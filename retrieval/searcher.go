package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/docgraph/ai"
	"github.com/poiesic/docgraph/cache"
	"github.com/poiesic/docgraph/core"
	"github.com/poiesic/docgraph/profile"
	"github.com/poiesic/docgraph/storage"
)

const (
	// candidateMultiplier bounds the candidate fetch at k*5 chunks. A bounded
	// superset instead of the full corpus is a deliberate recall/latency
	// trade-off.
	candidateMultiplier = 5

	// hybridPathMultiplier is how many results each fusion path requests
	// relative to the final k.
	hybridPathMultiplier = 2

	// fusionPoolSize is the fixed worker count for hybrid fan-out: one task
	// for the vector path, one for the keyword path.
	fusionPoolSize = 2

	defaultEmbeddingCacheSize = 1024
)

// Searcher answers vector, keyword, and hybrid queries over a graph store,
// backed by an embedding cache and a query-result cache. Cache reads are
// synchronous and never perform I/O; a hit short-circuits before any store or
// provider call.
type Searcher struct {
	store          storage.GraphStore
	embedder       ai.Embedder
	embeddingCache *cache.EmbeddingCache
	queryCache     *cache.QueryCache
	profiler       *profile.Profiler
	fusionPool     *ants.Pool
	dimension      int
	logger         *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithEmbeddingCache sets the embedding cache.
// Default is a fresh cache of capacity 1024.
func WithEmbeddingCache(c *cache.EmbeddingCache) Option {
	return func(s *Searcher) error {
		if c != nil {
			s.embeddingCache = c
		}
		return nil
	}
}

// WithQueryCache sets the query-result cache.
// Default is a fresh cache of capacity cache.DefaultQueryCacheCapacity.
func WithQueryCache(c *cache.QueryCache) Option {
	return func(s *Searcher) error {
		if c != nil {
			s.queryCache = c
		}
		return nil
	}
}

// WithProfiler sets the profiler wrapping provider, store, and ranker calls.
// Default is a fresh profiler.
func WithProfiler(p *profile.Profiler) Option {
	return func(s *Searcher) error {
		if p != nil {
			s.profiler = p
		}
		return nil
	}
}

// WithDimension sets the expected query-embedding dimensionality.
// Default is core.EmbeddingDim.
func WithDimension(dim int) Option {
	return func(s *Searcher) error {
		if dim < 1 {
			return core.ErrDimensionMismatch
		}
		s.dimension = dim
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(store storage.GraphStore, embedder ai.Embedder, opts ...Option) (*Searcher, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		store:     store,
		embedder:  embedder,
		profiler:  profile.NewProfiler(),
		dimension: core.EmbeddingDim,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.embeddingCache == nil {
		ec, err := cache.NewEmbeddingCache(defaultEmbeddingCacheSize)
		if err != nil {
			return nil, err
		}
		s.embeddingCache = ec
	}
	if s.queryCache == nil {
		qc, err := cache.NewQueryCache(cache.DefaultQueryCacheCapacity)
		if err != nil {
			return nil, err
		}
		s.queryCache = qc
	}

	pool, err := ants.NewPool(fusionPoolSize)
	if err != nil {
		return nil, err
	}
	s.fusionPool = pool

	return s, nil
}

// Release releases the fusion worker pool.
// The searcher should not be used after calling Release.
func (s *Searcher) Release() {
	if s.fusionPool != nil {
		s.fusionPool.Release()
	}
}

// Search answers a query in the given mode, returning up to k results ranked
// by descending score. The query cache is checked first for every mode; on a
// miss the uncached path runs and the outcome is written back under the
// mode's namespace.
func (s *Searcher) Search(ctx context.Context, query string, k int, mode core.SearchMode) ([]core.SearchResult, error) {
	if k <= 0 {
		return nil, core.ErrInvalidLimit
	}
	if _, err := core.ParseSearchMode(string(mode)); err != nil {
		return nil, err
	}

	if cached, ok := s.queryCache.Get(query, k, mode); ok {
		s.logger.Debug("query cache hit", "mode", mode, "k", k)
		return cached, nil
	}

	var (
		results []core.SearchResult
		err     error
	)
	switch mode {
	case core.ModeVector:
		results, err = s.vectorSearch(ctx, query, k)
	case core.ModeKeyword:
		results, err = s.keywordSearch(ctx, query, k)
	case core.ModeHybrid:
		results, err = s.hybridSearch(ctx, query, k)
	}
	if err != nil {
		return nil, err
	}

	s.queryCache.Put(query, k, mode, results)
	return results, nil
}

// EmbedQuery returns the (unit-length) embedding for a query, consulting the
// embedding cache before the provider.
func (s *Searcher) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	if vector, ok := s.embeddingCache.Get(query); ok {
		return vector, nil
	}

	timer := s.profiler.StartTimer("provider.encode_query")
	vector, err := s.embedder.EmbedText(ctx, query)
	s.profiler.EndTimer(timer)
	if err != nil {
		return nil, err
	}
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("%w: query embedding has %d, expected %d",
			core.ErrDimensionMismatch, len(vector), s.dimension)
	}

	vector = core.NormalizeVector(vector)
	s.embeddingCache.Put(query, vector)
	return vector, nil
}

func (s *Searcher) vectorSearch(ctx context.Context, query string, k int) ([]core.SearchResult, error) {
	queryVector, err := s.EmbedQuery(ctx, query)
	if err != nil {
		s.logger.Error("error embedding query", "err", err)
		return nil, err
	}

	timer := s.profiler.StartTimer("store.fetch_candidates")
	candidates, err := s.store.FetchCandidateChunks(ctx, k*candidateMultiplier)
	s.profiler.EndTimer(timer)
	if err != nil {
		s.logger.Error("error fetching candidate chunks", "err", err)
		return nil, err
	}

	timer = s.profiler.StartTimer("rank.vector")
	results, err := VectorRanker{}.Rank(queryVector, candidates, k)
	s.profiler.EndTimer(timer)
	return results, err
}

func (s *Searcher) keywordSearch(ctx context.Context, query string, k int) ([]core.SearchResult, error) {
	timer := s.profiler.StartTimer("store.fulltext_query")
	hits, err := s.store.FulltextQuery(ctx, query, k)
	s.profiler.EndTimer(timer)
	if err != nil {
		s.logger.Error("error running full-text query", "err", err)
		return nil, err
	}

	timer = s.profiler.StartTimer("rank.keyword")
	results, err := KeywordRanker{}.Rank(hits, k)
	s.profiler.EndTimer(timer)
	return results, err
}

// hybridSearch launches the vector and keyword paths together on the fusion
// pool, each asked for 2k results, and waits for both before merging. There
// is no short-circuit on the first to finish; a failure in either path fails
// the search.
func (s *Searcher) hybridSearch(ctx context.Context, query string, k int) ([]core.SearchResult, error) {
	pathK := k * hybridPathMultiplier

	var (
		wg                    sync.WaitGroup
		vecResults, kwResults []core.SearchResult
		vecErr, kwErr         error
	)

	wg.Add(2)
	s.submit(func() {
		defer wg.Done()
		vecResults, vecErr = s.vectorSearch(ctx, query, pathK)
	})
	s.submit(func() {
		defer wg.Done()
		kwResults, kwErr = s.keywordSearch(ctx, query, pathK)
	})
	wg.Wait()

	if vecErr != nil {
		return nil, vecErr
	}
	if kwErr != nil {
		return nil, kwErr
	}

	return fuseResults(vecResults, kwResults, k), nil
}

// submit runs task on the fusion pool, falling back to the calling goroutine
// if the pool rejects it, so both fusion paths always execute.
func (s *Searcher) submit(task func()) {
	if err := s.fusionPool.Submit(task); err != nil {
		task()
	}
}
