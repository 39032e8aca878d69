package ai

import (
	"context"
	"sync"
)

// serialEmbedder serializes all calls to an underlying embedder behind a
// single mutex. Embedding backends frequently share one model session across
// callers and do not document thread safety; the critical section here covers
// only the provider call, never any storage I/O.
type serialEmbedder struct {
	mu    sync.Mutex
	inner Embedder
}

var _ Embedder = (*serialEmbedder)(nil)

// NewSerialEmbedder wraps an embedder so that at most one encode call is in
// flight at a time. Use it for providers that do not document their own
// thread safety.
func NewSerialEmbedder(inner Embedder) (Embedder, error) {
	if inner == nil {
		return nil, ErrEmbedderRequired
	}
	return &serialEmbedder{inner: inner}, nil
}

func (s *serialEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.EmbedText(ctx, text)
}

func (s *serialEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.EmbedTexts(ctx, texts)
}
