package ingest

import "errors"

var (
	// ErrStoreRequired is returned when a graph store is not provided.
	ErrStoreRequired = errors.New("graph store required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")
)
