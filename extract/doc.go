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


// Package extract converts raw document bytes into normalized text,
// optionally split into pages.
//
// Each Extractor handles one document family. ForContentType picks the
// extractor for a MIME type reported by the fetch layer, so the
// ingestion pipeline never inspects bytes itself. All extractors run
// their output through Clean, which gives chunking and embedding a
// single, stable text form regardless of the input format.
//
// Page numbers are preserved from the source document. Formats without
// a page structure yield a single page numbered zero, which downstream
// layers treat as "not page-aware".
package extract
