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


package extract

import "errors"

var (
	// ErrUnsupportedType indicates no extractor handles the document's
	// content type.
	ErrUnsupportedType = errors.New("unsupported content type")

	// ErrNoContent indicates extraction produced no usable text.
	ErrNoContent = errors.New("document contains no extractable text")

	// ErrMalformedDocument indicates the raw bytes could not be parsed
	// as the claimed content type.
	ErrMalformedDocument = errors.New("malformed document")
)
