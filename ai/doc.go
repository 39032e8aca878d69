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


// Package ai defines the embedding provider abstraction consumed by the
// retrieval engine, along with its configuration.
//
// The engine never talks to an embedding service directly; it only sees the
// Embedder interface. Implementations live in subpackages: ai/openai for
// OpenAI-compatible APIs and ai/mock for deterministic test doubles.
//
// Embedders must be deterministic for identical input, which is what makes
// embedding caching correct. Implementations that do not document their own
// thread safety should be wrapped with NewSerialEmbedder.
package ai
