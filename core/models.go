package core

import (
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// EmbeddingDim is the fixed embedding dimensionality for a deployment.
// Query vectors and stored chunk vectors must both have this length;
// a mismatch is a precondition failure, never coerced.
const EmbeddingDim = 384

// Document is an ingested document. Content is immutable after creation;
// re-ingesting with the same ID replaces the document and its chunks.
type Document struct {
	Id         string
	Content    string
	Metadata   map[string]string
	ChunkCount int
	CreatedAt  time.Time
}

// Chunk is a bounded text segment of a Document carrying its own embedding.
// Index values are contiguous 0..n-1 within a document, assigned in split order.
// A chunk never outlives its owning document.
type Chunk struct {
	DocID     string
	Index     int
	Text      string
	Embedding []float32
}

// Candidate is a chunk joined with its owning document's metadata,
// as returned by the store's candidate fetch for ranking.
type Candidate struct {
	Text        string
	Embedding   []float32
	ChunkIndex  int
	DocID       string
	DocMetadata map[string]string
}

// SearchResult is a ranked retrieval hit.
type SearchResult struct {
	Text       string
	Score      float32
	DocID      string
	ChunkIndex int
	Metadata   map[string]string
}

// SearchMode selects the retrieval strategy.
type SearchMode string

const (
	// ModeVector ranks candidates by cosine similarity to the query embedding.
	ModeVector SearchMode = "vector"
	// ModeKeyword ranks candidates by full-text relevance, with a substring fallback.
	ModeKeyword SearchMode = "keyword"
	// ModeHybrid fuses the vector and keyword rankings into one list.
	ModeHybrid SearchMode = "hybrid"
)

// ParseSearchMode converts a string to a SearchMode.
// Returns ErrInvalidSearchMode for unknown values.
func ParseSearchMode(s string) (SearchMode, error) {
	switch SearchMode(s) {
	case ModeVector, ModeKeyword, ModeHybrid:
		return SearchMode(s), nil
	}
	return "", ErrInvalidSearchMode
}

// NewDocumentID generates a fresh document ID for callers that don't supply one.
func NewDocumentID() string {
	return uuid.NewString()
}

// HashText returns a deterministic hex digest of text using BLAKE2b.
// Identical content always produces the identical digest, which is what makes
// it usable as an embedding-cache key and as a chunk record key component.
func HashText(text string) string {
	h, _ := blake2b.New(16, nil)
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}
