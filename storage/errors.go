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


package storage

import "errors"

var (
	// ErrConnection indicates the backing store is unreachable or failed to
	// open. Fatal for the in-flight request; no retry is layered on top of
	// the driver's own behavior.
	ErrConnection = errors.New("store connection failed")

	// ErrIndexUnavailable indicates the full-text index is missing. Recovered
	// locally via the substring fallback scan, never surfaced as fatal.
	ErrIndexUnavailable = errors.New("full-text index unavailable")

	// ErrTransactionFailed indicates a batch transaction was rolled back.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrNotFound indicates that the requested record was not found.
	ErrNotFound = errors.New("record not found")

	// ErrSerializationFailed indicates a serialization/deserialization failure.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrStorageClosed indicates that the storage backend is closed.
	ErrStorageClosed = errors.New("storage is closed")
)
