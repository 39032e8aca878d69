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


// Package retrieval implements ranked search over stored chunks: a vector
// ranker over cosine similarity, a keyword ranker over the store's full-text
// scores, and a hybrid fusion that runs both concurrently and merges their
// results. The Searcher front-ends all three behind a query-result cache.
package retrieval
