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

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrEmptyContent indicates the Content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrDimensionMismatch indicates an embedding vector does not match the
	// configured dimensionality. This is a fatal precondition failure.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrChunkIndexGap indicates chunk indexes are not a contiguous 0..n-1 range.
	ErrChunkIndexGap = errors.New("chunk indexes must be contiguous from zero")

	// ErrInvalidSearchMode indicates an unknown search mode value.
	ErrInvalidSearchMode = errors.New("invalid search mode")

	// ErrInvalidLimit indicates a non-positive result limit.
	ErrInvalidLimit = errors.New("result limit must be positive")
)
