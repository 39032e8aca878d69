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


package core

import "fmt"

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Content must not be empty
//
// NOT validated (populated during ingestion):
//   - Id (empty means one is generated)
//   - ChunkCount, CreatedAt (assigned by the ingestor)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}
	if doc.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyContent)
	}
	return nil
}

// ValidateChunk validates a single Chunk against the expected embedding dimension.
func ValidateChunk(chunk *Chunk, dim int) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}
	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyContent)
	}
	if chunk.Index < 0 {
		return fmt.Errorf("%w: negative index %d", ErrInvalidChunk, chunk.Index)
	}
	if len(chunk.Embedding) != dim {
		return fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, dim, len(chunk.Embedding))
	}
	return nil
}

// ValidateChunkSequence validates a document's full chunk set: every chunk
// passes ValidateChunk and indexes form a contiguous 0..n-1 range in order.
func ValidateChunkSequence(chunks []Chunk, dim int) error {
	for i := range chunks {
		if err := ValidateChunk(&chunks[i], dim); err != nil {
			return err
		}
		if chunks[i].Index != i {
			return fmt.Errorf("%w: index %d at position %d", ErrChunkIndexGap, chunks[i].Index, i)
		}
	}
	return nil
}
