package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/docgraph/ai"
	"github.com/poiesic/docgraph/cache"
	"github.com/poiesic/docgraph/core"
	"github.com/poiesic/docgraph/profile"
	"github.com/poiesic/docgraph/storage"
)

// DefaultBatchSize is how many documents share one store transaction when
// the caller doesn't say otherwise.
const DefaultBatchSize = 10

// DocumentInput is a document handed to the ingestor. ID is optional; when
// empty one is generated. Supplying the ID of an existing document replaces
// that document's content and chunks instead of creating a second one.
type DocumentInput struct {
	ID       string
	Content  string
	Metadata map[string]string
}

// Summary reports the outcome of an ingestion run. Processed counts
// documents written, Failed counts batches rolled back whole, TotalChunks
// counts chunks created across the successful batches.
type Summary struct {
	Processed   int
	Failed      int
	TotalChunks int
}

// BatchIngestor splits, embeds, and stores documents in transactional
// batches. A failure anywhere in a batch rolls the whole batch back and is
// counted in the summary; ingestion continues with the next batch.
type BatchIngestor struct {
	store          storage.GraphStore
	embedder       ai.Embedder
	embeddingCache *cache.EmbeddingCache
	queryCache     *cache.QueryCache
	splitter       Splitter
	profiler       *profile.Profiler
	dimension      int
	logger         *slog.Logger
}

// Option configures a BatchIngestor.
type Option func(*BatchIngestor) error

// WithChunking sets the target chunk size and overlap.
// Defaults are DefaultChunkSize and DefaultChunkOverlap.
func WithChunking(chunkSize, overlap int) Option {
	return func(bi *BatchIngestor) error {
		bi.splitter = NewSplitter(chunkSize, overlap)
		return nil
	}
}

// WithEmbeddingCache sets the embedding cache consulted before the provider.
// Without one every chunk goes to the provider.
func WithEmbeddingCache(c *cache.EmbeddingCache) Option {
	return func(bi *BatchIngestor) error {
		bi.embeddingCache = c
		return nil
	}
}

// WithQueryCache sets the query cache to invalidate after a successful
// ingestion, so stale rankings are never served for new content.
func WithQueryCache(c *cache.QueryCache) Option {
	return func(bi *BatchIngestor) error {
		bi.queryCache = c
		return nil
	}
}

// WithProfiler sets the profiler wrapping provider and store calls.
// Default is a fresh profiler.
func WithProfiler(p *profile.Profiler) Option {
	return func(bi *BatchIngestor) error {
		if p != nil {
			bi.profiler = p
		}
		return nil
	}
}

// WithDimension sets the embedding dimensionality enforced on provider
// output. Default is core.EmbeddingDim.
func WithDimension(dim int) Option {
	return func(bi *BatchIngestor) error {
		if dim < 1 {
			return core.ErrDimensionMismatch
		}
		bi.dimension = dim
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(bi *BatchIngestor) error {
		if logger == nil {
			logger = slog.Default()
		}
		bi.logger = logger
		return nil
	}
}

// NewBatchIngestor creates a new ingestor.
func NewBatchIngestor(store storage.GraphStore, embedder ai.Embedder, opts ...Option) (*BatchIngestor, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	bi := &BatchIngestor{
		store:     store,
		embedder:  embedder,
		splitter:  NewSplitter(DefaultChunkSize, DefaultChunkOverlap),
		profiler:  profile.NewProfiler(),
		dimension: core.EmbeddingDim,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(bi); err != nil {
			return nil, err
		}
	}
	return bi, nil
}

// AddDocument ingests a single document in its own transaction.
func (bi *BatchIngestor) AddDocument(ctx context.Context, doc DocumentInput) (Summary, error) {
	return bi.AddDocuments(ctx, []DocumentInput{doc}, 1)
}

// AddDocuments ingests documents in transactional batches of batchSize.
// Each batch commits or rolls back whole; a rolled-back batch increments
// Failed and processing moves on to the next batch. The returned error is
// reserved for precondition failures, not per-batch ones.
func (bi *BatchIngestor) AddDocuments(ctx context.Context, docs []DocumentInput, batchSize int) (Summary, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	var summary Summary
	for start := 0; start < len(docs); start += batchSize {
		end := start + batchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[start:end]

		inserts, chunkCount, err := bi.prepareBatch(ctx, batch)
		if err != nil {
			bi.logger.Error("batch preparation failed", "documents", len(batch), "err", err)
			summary.Failed++
			continue
		}

		timer := bi.profiler.StartTimer("store.batch_insert")
		err = bi.store.BatchInsert(ctx, inserts)
		bi.profiler.EndTimer(timer)
		if err != nil {
			bi.logger.Error("batch insert failed", "documents", len(batch), "err", err)
			summary.Failed++
			continue
		}

		summary.Processed += len(batch)
		summary.TotalChunks += chunkCount
	}

	if summary.Processed > 0 && bi.queryCache != nil {
		bi.queryCache.Clear()
	}

	bi.logger.Info("ingestion finished",
		"processed", summary.Processed,
		"failedBatches", summary.Failed,
		"chunks", summary.TotalChunks)
	return summary, nil
}

// prepareBatch splits and embeds every document of a batch. Any failure
// poisons the whole batch; nothing reaches the store.
func (bi *BatchIngestor) prepareBatch(ctx context.Context, batch []DocumentInput) ([]storage.DocumentInsert, int, error) {
	inserts := make([]storage.DocumentInsert, 0, len(batch))
	chunkCount := 0

	for _, input := range batch {
		if input.Content == "" {
			return nil, 0, fmt.Errorf("%w: %w", core.ErrInvalidDocument, core.ErrEmptyContent)
		}

		docID := input.ID
		if docID == "" {
			docID = core.NewDocumentID()
		}

		texts, err := bi.splitter.Split(input.Content)
		if err != nil {
			return nil, 0, err
		}

		vectors, err := bi.embedChunks(ctx, texts)
		if err != nil {
			return nil, 0, err
		}

		chunks := make([]core.Chunk, len(texts))
		for i := range texts {
			chunks[i] = core.Chunk{
				DocID:     docID,
				Index:     i,
				Text:      texts[i],
				Embedding: vectors[i],
			}
		}

		inserts = append(inserts, storage.DocumentInsert{
			Document: core.Document{
				Id:         docID,
				Content:    input.Content,
				Metadata:   input.Metadata,
				ChunkCount: len(chunks),
				CreatedAt:  time.Now().UTC(),
			},
			Chunks: chunks,
		})
		chunkCount += len(chunks)
	}

	return inserts, chunkCount, nil
}

// embedChunks returns a unit-length embedding per text, checking the
// embedding cache per chunk first and batch-encoding only the misses.
func (bi *BatchIngestor) embedChunks(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	var (
		missing        []string
		missingIndexes []int
	)

	for i, text := range texts {
		if bi.embeddingCache != nil {
			if vector, ok := bi.embeddingCache.Get(text); ok {
				vectors[i] = vector
				continue
			}
		}
		missing = append(missing, text)
		missingIndexes = append(missingIndexes, i)
	}

	if len(missing) == 0 {
		return vectors, nil
	}

	timer := bi.profiler.StartTimer("provider.encode_batch")
	encoded, err := bi.embedder.EmbedTexts(ctx, missing)
	bi.profiler.EndTimer(timer)
	if err != nil {
		return nil, err
	}
	if len(encoded) != len(missing) {
		return nil, fmt.Errorf("%w: expected %d vectors, got %d", ai.ErrEncodingFailed, len(missing), len(encoded))
	}

	for j, vector := range encoded {
		if len(vector) != bi.dimension {
			return nil, fmt.Errorf("%w: vector has %d, expected %d",
				core.ErrDimensionMismatch, len(vector), bi.dimension)
		}
		vector = core.NormalizeVector(vector)
		vectors[missingIndexes[j]] = vector
		if bi.embeddingCache != nil {
			bi.embeddingCache.Put(missing[j], vector)
		}
	}

	return vectors, nil
}
