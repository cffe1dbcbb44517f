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


package qa

import (
	"errors"
	"fmt"
)

var (
	// ErrCacheRequired is returned when creating an engine without an index cache.
	ErrCacheRequired = errors.New("index cache is required")

	// ErrBuilderRequired is returned when creating an engine without an index builder.
	ErrBuilderRequired = errors.New("index builder is required")

	// ErrRetrieverRequired is returned when creating an engine without a retriever.
	ErrRetrieverRequired = errors.New("retriever is required")

	// ErrGeneratorRequired is returned when creating an engine without an answer generator.
	ErrGeneratorRequired = errors.New("answer generator is required")

	// ErrSourceRequired is returned when a document source identifier is blank.
	ErrSourceRequired = errors.New("document source is required")
)

// BuildError reports that a document could not be fetched, extracted,
// or indexed. Callers that answer on behalf of a document use it to
// tell indexing failures apart from failures answering individual
// questions.
type BuildError struct {
	Source string
	Err    error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("indexing %s: %v", e.Source, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}
