package ingest

import (
	"github.com/tmc/langchaingo/textsplitter"
)

const (
	// DefaultChunkSize is the target chunk length in characters.
	DefaultChunkSize = 300

	// DefaultChunkOverlap is how many characters adjacent chunks share.
	DefaultChunkOverlap = 30
)

// chunkSeparators is the split priority: paragraph breaks first, then line
// breaks, then sentence ends, then word boundaries, then raw character cuts.
var chunkSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Splitter splits document content into overlapping chunks using a
// separator-priority strategy.
type Splitter struct {
	inner textsplitter.RecursiveCharacter
}

// NewSplitter creates a splitter with the given target chunk size and
// overlap. Non-positive sizes fall back to the defaults; an overlap that is
// negative or not smaller than the chunk size falls back too.
func NewSplitter(chunkSize, overlap int) Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = DefaultChunkOverlap
	}
	return Splitter{
		inner: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(overlap),
			textsplitter.WithSeparators(chunkSeparators),
		),
	}
}

// Split returns the chunk texts for content, in document order.
func (s Splitter) Split(content string) ([]string, error) {
	return s.inner.SplitText(content)
}
