// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package docgraph is a hybrid retrieval backend for document
// question-answering: it stores chunked documents with vector embeddings in
// a backing graph store and answers semantic, keyword, and hybrid queries
// through caching and concurrent search fusion. The Engine facade wires the
// store, the embedding provider, both caches, and the profiler together;
// callers that layer answer generation on top only ever consume the ranked
// context this package returns.
package docgraph

import (
	"context"
	"log/slog"

	"github.com/poiesic/docgraph/ai"
	"github.com/poiesic/docgraph/ai/openai"
	"github.com/poiesic/docgraph/cache"
	"github.com/poiesic/docgraph/core"
	"github.com/poiesic/docgraph/ingest"
	"github.com/poiesic/docgraph/profile"
	"github.com/poiesic/docgraph/retrieval"
	"github.com/poiesic/docgraph/storage"
	badgerstore "github.com/poiesic/docgraph/storage/badger"
)

// Engine owns the retrieval pipeline: ingestion, search, caches, and
// instrumentation over one graph store and one embedding provider.
type Engine struct {
	store          storage.GraphStore
	embedder       ai.Embedder
	embeddingCache *cache.EmbeddingCache
	queryCache     *cache.QueryCache
	profiler       *profile.Profiler
	searcher       *retrieval.Searcher
	ingestor       *ingest.BatchIngestor
	logger         *slog.Logger
}

// Stats aggregates corpus and cache statistics.
type Stats struct {
	Documents           int
	Chunks              int
	AvgChunksPerDoc     float64
	CacheSize           int
	CacheHitRatePercent float64
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig           *ai.Config
	embedder           ai.Embedder
	store              storage.GraphStore
	embeddingCacheSize int
	queryCacheSize     int
	chunkSize          int
	chunkOverlap       int
	logger             *slog.Logger
}

// WithAIConfig sets the embedding provider configuration used when no
// embedder is injected.
func WithAIConfig(cfg *ai.Config) EngineOption {
	return func(o *engineOptions) {
		if cfg != nil {
			o.aiConfig = cfg
		}
	}
}

// WithEmbedder injects an embedder, bypassing provider construction.
// The embedder is used as given; wrap it with ai.NewSerialEmbedder yourself
// if it isn't safe for concurrent use.
func WithEmbedder(e ai.Embedder) EngineOption {
	return func(o *engineOptions) { o.embedder = e }
}

// WithStore injects a graph store, bypassing the Badger adapter. The engine
// takes ownership and closes it on Close.
func WithStore(s storage.GraphStore) EngineOption {
	return func(o *engineOptions) { o.store = s }
}

// WithEmbeddingCacheSize sets the embedding cache capacity.
func WithEmbeddingCacheSize(size int) EngineOption {
	return func(o *engineOptions) { o.embeddingCacheSize = size }
}

// WithQueryCacheSize sets the query cache capacity.
func WithQueryCacheSize(size int) EngineOption {
	return func(o *engineOptions) { o.queryCacheSize = size }
}

// WithChunking sets chunk size and overlap for ingestion.
func WithChunking(chunkSize, overlap int) EngineOption {
	return func(o *engineOptions) {
		o.chunkSize = chunkSize
		o.chunkOverlap = overlap
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewEngine opens (or creates) an engine over the Badger store at filePath.
// Injecting a store via WithStore leaves filePath unused.
func NewEngine(filePath string, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig:           ai.DefaultConfig(),
		embeddingCacheSize: 1024,
		queryCacheSize:     cache.DefaultQueryCacheCapacity,
		chunkSize:          ingest.DefaultChunkSize,
		chunkOverlap:       ingest.DefaultChunkOverlap,
		logger:             slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	dimension := options.aiConfig.Dimension

	store := options.store
	if store == nil {
		backend, err := badgerstore.OpenBackend(filePath, false)
		if err != nil {
			return nil, err
		}
		store, err = badgerstore.NewGraphStore(backend,
			badgerstore.WithDimension(dimension),
			badgerstore.WithLogger(options.logger))
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	embedder := options.embedder
	if embedder == nil {
		provider, err := openai.NewEmbedder(options.aiConfig)
		if err != nil {
			store.Close()
			return nil, err
		}
		// The provider doesn't document its own thread safety, so encode
		// calls are serialized.
		embedder, err = ai.NewSerialEmbedder(provider)
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	embeddingCache, err := cache.NewEmbeddingCache(options.embeddingCacheSize)
	if err != nil {
		store.Close()
		return nil, err
	}
	queryCache, err := cache.NewQueryCache(options.queryCacheSize)
	if err != nil {
		store.Close()
		return nil, err
	}
	profiler := profile.NewProfiler()

	searcher, err := retrieval.NewSearcher(store, embedder,
		retrieval.WithEmbeddingCache(embeddingCache),
		retrieval.WithQueryCache(queryCache),
		retrieval.WithProfiler(profiler),
		retrieval.WithDimension(dimension),
		retrieval.WithLogger(options.logger))
	if err != nil {
		store.Close()
		return nil, err
	}

	ingestor, err := ingest.NewBatchIngestor(store, embedder,
		ingest.WithChunking(options.chunkSize, options.chunkOverlap),
		ingest.WithEmbeddingCache(embeddingCache),
		ingest.WithQueryCache(queryCache),
		ingest.WithProfiler(profiler),
		ingest.WithDimension(dimension),
		ingest.WithLogger(options.logger))
	if err != nil {
		searcher.Release()
		store.Close()
		return nil, err
	}

	return &Engine{
		store:          store,
		embedder:       embedder,
		embeddingCache: embeddingCache,
		queryCache:     queryCache,
		profiler:       profiler,
		searcher:       searcher,
		ingestor:       ingestor,
		logger:         options.logger,
	}, nil
}

// Search answers a query in the given mode, returning up to k results ranked
// by descending score.
func (e *Engine) Search(ctx context.Context, query string, k int, mode core.SearchMode) ([]core.SearchResult, error) {
	return e.searcher.Search(ctx, query, k, mode)
}

// Ingest splits, embeds, and stores documents in transactional batches.
func (e *Engine) Ingest(ctx context.Context, docs []ingest.DocumentInput, batchSize int) (ingest.Summary, error) {
	return e.ingestor.AddDocuments(ctx, docs, batchSize)
}

// IngestDocument ingests a single document in its own transaction.
func (e *Engine) IngestDocument(ctx context.Context, doc ingest.DocumentInput) (ingest.Summary, error) {
	return e.ingestor.AddDocument(ctx, doc)
}

// Delete removes a document and all of its chunks, then invalidates cached
// query results.
func (e *Engine) Delete(ctx context.Context, docID string) error {
	if err := e.store.DeleteDocument(ctx, docID); err != nil {
		return err
	}
	e.queryCache.Clear()
	return nil
}

// Stats reports corpus counts and embedding-cache effectiveness.
func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	storeStats, err := e.store.Stats(ctx)
	if err != nil {
		return Stats{}, err
	}
	cacheStats := e.embeddingCache.Stats()

	return Stats{
		Documents:           storeStats.DocumentCount,
		Chunks:              storeStats.ChunkCount,
		AvgChunksPerDoc:     storeStats.AvgChunksPerDoc,
		CacheSize:           cacheStats.Size,
		CacheHitRatePercent: cacheStats.HitRatePercent,
	}, nil
}

// Profiler exposes the accumulated call timings.
func (e *Engine) Profiler() *profile.Profiler {
	return e.profiler
}

// Close releases the fusion pool and closes the store.
func (e *Engine) Close() error {
	e.searcher.Release()
	if err := e.store.Close(); err != nil {
		e.logger.Error("error closing graph store", "err", err)
		return err
	}
	return nil
}
