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


// Package vector provides an exact inner-product similarity index over
// unit-normalized embedding vectors.
//
// An Index is built once from a vector matrix and is immutable after
// construction. Because every stored vector is normalized to unit
// length, inner-product scores equal cosine similarity and fall in
// [-1, 1]. Search is an exhaustive scan, which keeps results exact and
// deterministic: hits are ordered by descending score with ties broken
// by ascending row id.
//
// Row ids are positions: the vector at row i always describes entry i
// of whatever metadata table was built alongside the index. Reconstruct
// exposes stored rows by id so callers can materialize restricted
// sub-indexes for filtered search.
package vector
