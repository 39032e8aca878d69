package storage

import (
	"context"

	"github.com/poiesic/docgraph/core"
)

// DocumentInsert pairs a document with its full chunk set for ingestion.
type DocumentInsert struct {
	Document core.Document
	Chunks   []core.Chunk
}

// Stats summarizes the stored corpus.
type Stats struct {
	DocumentCount   int
	ChunkCount      int
	AvgChunksPerDoc float64
}

// GraphStore is the backing-store capability the retrieval engine consumes.
// Implementations must be thread-safe and support concurrent access.
//
// Connection handling, pooling, and transaction retry belong to the store
// driver; callers get no additional retry layer on top of it. A connection
// failure surfaces as ErrConnection and is fatal for the in-flight request.
type GraphStore interface {
	// FetchCandidateChunks returns up to limit stored chunks joined with their
	// owning document's metadata. The result is a bounded superset of what a
	// ranker will keep, not the full corpus; bounding it is a deliberate
	// recall/latency trade-off.
	FetchCandidateChunks(ctx context.Context, limit int) ([]core.Candidate, error)

	// FulltextQuery returns up to limit chunks matching term, scored by the
	// store's full-text relevance. When no full-text index is available the
	// store recovers locally with a case-insensitive substring scan in which
	// every hit receives FallbackSubstringScore.
	FulltextQuery(ctx context.Context, term string, limit int) ([]core.SearchResult, error)

	// BatchInsert writes a batch of documents and their chunks in a single
	// transaction: documents are upserted by ID (re-inserting an existing ID
	// replaces its chunk set, never duplicates the document), chunk records
	// are created with their embeddings and indexes, and ownership edges are
	// established. The batch commits or rolls back as a whole.
	BatchInsert(ctx context.Context, batch []DocumentInsert) error

	// DeleteDocument removes a document and cascades to all of its chunks.
	// Returns ErrNotFound if the document doesn't exist.
	DeleteDocument(ctx context.Context, docID string) error

	// Stats returns document and chunk counts for the stored corpus.
	Stats(ctx context.Context) (Stats, error)

	// Close closes the storage backend and releases resources.
	Close() error
}

// FallbackSubstringScore is the constant relevance assigned to every hit of
// the substring fallback scan. Fallback hits are deliberately
// undifferentiated; inventing a finer heuristic here would diverge from the
// full-text contract.
const FallbackSubstringScore = 0.5
