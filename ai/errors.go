package ai

import "errors"

var (
	// ErrEncodingFailed indicates the embedding provider failed to produce
	// vectors. The failure is surfaced to the caller as-is; fabricating a
	// placeholder embedding to mask it is explicitly not done here.
	ErrEncodingFailed = errors.New("embedding generation failed")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")
)
