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


// Package api exposes document question answering over HTTP.
//
// POST /api/v1/answers takes a document URL and a list of questions
// and returns one answer per question. The endpoint is guarded by a
// bearer token; GET /health is open. Indexing failures are reported
// inside a 200 response as the answer to every question, so clients
// that fan questions out over many documents never have to special
// case a broken document.
package api
