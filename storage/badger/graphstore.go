package badger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docgraph/core"
	"github.com/poiesic/docgraph/storage"
)

// GraphStore implements storage.GraphStore on an embedded BadgerDB.
// Documents and chunks are separate record types; the ownership edge between
// them is materialized in the chunk key (see keys.go).
type GraphStore struct {
	backend   *Backend
	dimension int
	logger    *slog.Logger
}

var _ storage.GraphStore = (*GraphStore)(nil)

// Option configures a GraphStore.
type Option func(*GraphStore) error

// WithDimension sets the embedding dimensionality the store enforces on
// inserted chunks. Default is core.EmbeddingDim.
func WithDimension(dim int) Option {
	return func(s *GraphStore) error {
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
	return func(s *GraphStore) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewGraphStore creates a GraphStore on an open backend.
func NewGraphStore(backend *Backend, opts ...Option) (*GraphStore, error) {
	if backend == nil {
		return nil, storage.ErrConnection
	}

	s := &GraphStore{
		backend:   backend,
		dimension: core.EmbeddingDim,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Close closes the underlying backend.
func (s *GraphStore) Close() error {
	return s.backend.Close()
}

// FetchCandidateChunks returns up to limit chunks joined with their owning
// document's metadata, in stable key order.
func (s *GraphStore) FetchCandidateChunks(ctx context.Context, limit int) ([]core.Candidate, error) {
	if limit <= 0 {
		return nil, core.ErrInvalidLimit
	}

	var candidates []core.Candidate
	err := s.backend.View(func(tx *badger.Txn) error {
		// Document metadata is looked up once per document, not per chunk.
		metadataByDoc := make(map[string]map[string]string)

		opts := badger.DefaultIteratorOptions
		opts.Prefix = allChunksPrefix()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid() && len(candidates) < limit; iter.Next() {
			var chunk *core.Chunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			})
			if err != nil {
				return err
			}

			metadata, ok := metadataByDoc[chunk.DocID]
			if !ok {
				doc, err := s.readDocument(tx, chunk.DocID)
				if err != nil {
					return err
				}
				metadata = doc.Metadata
				metadataByDoc[chunk.DocID] = metadata
			}

			candidates = append(candidates, core.Candidate{
				Text:        chunk.Text,
				Embedding:   chunk.Embedding,
				ChunkIndex:  chunk.Index,
				DocID:       chunk.DocID,
				DocMetadata: metadata,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

// FulltextQuery matches chunks against term. BadgerDB ships no full-text
// index, so this adapter always serves the fallback path: a case-insensitive
// substring scan in which every hit scores storage.FallbackSubstringScore.
// Hits are returned in stable key order, up to limit.
func (s *GraphStore) FulltextQuery(ctx context.Context, term string, limit int) ([]core.SearchResult, error) {
	if limit <= 0 {
		return nil, core.ErrInvalidLimit
	}

	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return nil, nil
	}

	var results []core.SearchResult
	err := s.backend.View(func(tx *badger.Txn) error {
		metadataByDoc := make(map[string]map[string]string)

		opts := badger.DefaultIteratorOptions
		opts.Prefix = allChunksPrefix()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid() && len(results) < limit; iter.Next() {
			var chunk *core.Chunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			})
			if err != nil {
				return err
			}

			if !strings.Contains(strings.ToLower(chunk.Text), needle) {
				continue
			}

			metadata, ok := metadataByDoc[chunk.DocID]
			if !ok {
				doc, err := s.readDocument(tx, chunk.DocID)
				if err != nil {
					return err
				}
				metadata = doc.Metadata
				metadataByDoc[chunk.DocID] = metadata
			}

			results = append(results, core.SearchResult{
				Text:       chunk.Text,
				Score:      storage.FallbackSubstringScore,
				DocID:      chunk.DocID,
				ChunkIndex: chunk.Index,
				Metadata:   metadata,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// BatchInsert writes the batch in one read-write transaction. Documents are
// upserted by ID: an existing document keeps its original CreatedAt and has
// its previous chunk set removed before the new one is written, so
// re-ingestion never duplicates a document or leaks orphan chunks. Any
// failure discards the whole batch.
func (s *GraphStore) BatchInsert(ctx context.Context, batch []storage.DocumentInsert) error {
	for i := range batch {
		if err := core.ValidateDocument(&batch[i].Document); err != nil {
			return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
		}
		if err := core.ValidateChunkSequence(batch[i].Chunks, s.dimension); err != nil {
			return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
		}
	}

	err := s.backend.Update(func(tx *badger.Txn) error {
		for i := range batch {
			doc := batch[i].Document

			existing, err := s.readDocument(tx, doc.Id)
			if err != nil && err != storage.ErrNotFound {
				return err
			}
			if existing != nil {
				doc.CreatedAt = existing.CreatedAt
				if err := deleteChunkRange(tx, doc.Id); err != nil {
					return err
				}
			} else if doc.CreatedAt.IsZero() {
				doc.CreatedAt = time.Now().UTC()
			}
			doc.ChunkCount = len(batch[i].Chunks)

			if err := tx.Set(makeDocumentKey(doc.Id), storage.MarshalDocument(&doc)); err != nil {
				return err
			}
			for j := range batch[i].Chunks {
				chunk := &batch[i].Chunks[j]
				if err := tx.Set(makeChunkKey(chunk.DocID, chunk.Index), storage.MarshalChunk(chunk)); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("batch insert rolled back", "documents", len(batch), "err", err)
		return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
	}
	return nil
}

// DeleteDocument removes a document and all of its chunks in one transaction.
func (s *GraphStore) DeleteDocument(ctx context.Context, docID string) error {
	return s.backend.Update(func(tx *badger.Txn) error {
		key := makeDocumentKey(docID)
		if _, err := tx.Get(key); err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return deleteChunkRange(tx, docID)
	})
}

// Stats counts documents and chunks with a key-only scan.
func (s *GraphStore) Stats(ctx context.Context) (storage.Stats, error) {
	var stats storage.Stats
	err := s.backend.View(func(tx *badger.Txn) error {
		stats.DocumentCount = countKeys(tx, allDocumentsPrefix())
		stats.ChunkCount = countKeys(tx, allChunksPrefix())
		return nil
	})
	if err != nil {
		return storage.Stats{}, err
	}
	if stats.DocumentCount > 0 {
		stats.AvgChunksPerDoc = float64(stats.ChunkCount) / float64(stats.DocumentCount)
	}
	return stats, nil
}

// readDocument reads a document record inside a transaction.
// Returns storage.ErrNotFound if the record doesn't exist.
func (s *GraphStore) readDocument(tx *badger.Txn, docID string) (*core.Document, error) {
	item, err := tx.Get(makeDocumentKey(docID))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}

	var doc *core.Document
	err = item.Value(func(val []byte) error {
		var err error
		doc, err = storage.UnmarshalDocument(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// deleteChunkRange removes every chunk belonging to a document.
func deleteChunkRange(tx *badger.Txn, docID string) error {
	// Collect first, then delete; mutating under an open iterator is fragile.
	var keys [][]byte

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = makeChunkScanPrefix(docID)
	iter := tx.NewIterator(opts)
	for iter.Rewind(); iter.Valid(); iter.Next() {
		keys = append(keys, iter.Item().KeyCopy(nil))
	}
	iter.Close()

	for _, key := range keys {
		if err := tx.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

func countKeys(tx *badger.Txn, prefix []byte) int {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	count := 0
	for iter.Rewind(); iter.Valid(); iter.Next() {
		count++
	}
	return count
}
