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


// Package retrieve ranks document chunks against a natural-language
// query using embedding similarity.
//
// A Retriever embeds the query, searches a cached document entry, and
// maps vector hits back to chunk records with their raw similarity
// scores. Metadata filters (source, page range, clause number) are
// applied either by searching a restricted sub-index, when few chunks
// pass the filter, or by over-retrieving from the full index and
// discarding non-matching candidates. Scores are never rescaled, so
// results from the two strategies are numerically comparable.
package retrieve
