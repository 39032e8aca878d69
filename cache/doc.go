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


// Package cache provides the two in-process caches used by the retrieval
// engine: a bounded LRU cache for text embeddings and a bounded FIFO cache
// for ranked query results.
//
// Both caches are mutex-guarded and never perform I/O inside their critical
// sections; they are never a source of truth, so a miss simply means the
// uncached path runs. Caches are constructed explicitly with a capacity and
// injected into the engine, never shared through package-level state.
package cache
