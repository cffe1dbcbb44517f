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


// Package qa answers natural-language questions about indexed documents.
//
// The engine retrieves the chunks most similar to each question, renders
// them into a cited context block, and asks the configured generator for
// an answer grounded in that context. Questions that reference a clause
// number ("what does clause 4.2 say?") are first retrieved with a clause
// filter; when the filter matches nothing the engine falls back to plain
// semantic retrieval. When no context can be found at all, the engine
// returns a fixed "not found" answer without consulting the generator.
//
// Batch processing (ProcessDocument) and interactive sessions share the
// same conversation model: the most recent exchanges are replayed to the
// generator so follow-up questions resolve against earlier answers.
package qa
