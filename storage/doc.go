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


// Package storage defines the GraphStore adapter interface the retrieval
// engine consumes, together with its error taxonomy and the binary
// serialization of stored records.
//
// The engine assumes a backing graph store exists; it never implements
// indexing itself. The shipped adapter lives in storage/badger and keeps
// documents, chunks, and their ownership edges in an embedded BadgerDB.
// Other adapters only need to satisfy the GraphStore interface.
package storage
