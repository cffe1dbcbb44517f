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


package core

import "fmt"

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - Source must not be empty
//   - Page must not be negative (0 means "not page-aware")
//
// NOT validated:
//   - ClauseNumber (a best-effort annotation; empty is normal)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyText)
	}

	if chunk.Source == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptySource)
	}

	if chunk.Page < 0 {
		return fmt.Errorf("%w: %w: %d", ErrInvalidChunk, ErrNegativePage, chunk.Page)
	}

	return nil
}

// ValidateDocumentIndex validates a DocumentIndex according to domain
// rules. It is the re-verification gate for records crossing a trust
// boundary, such as loads from persistent storage.
//
// Validation rules:
//   - Source must not be empty
//   - Dimension must be positive when any vectors are present
//   - Vectors and Chunks must have identical row counts
//   - every vector must have exactly Dimension components
//   - every chunk must itself be valid
func ValidateDocumentIndex(di *DocumentIndex) error {
	if di == nil {
		return fmt.Errorf("%w: document index is nil", ErrInvalidDocumentIndex)
	}

	if di.Source == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocumentIndex, ErrEmptySource)
	}

	if len(di.Vectors) != len(di.Chunks) {
		return fmt.Errorf("%w: %w: %d vectors, %d chunks",
			ErrInvalidDocumentIndex, ErrRowMisalignment, len(di.Vectors), len(di.Chunks))
	}

	if len(di.Vectors) > 0 && di.Dimension <= 0 {
		return fmt.Errorf("%w: dimension %d", ErrInvalidDocumentIndex, di.Dimension)
	}

	for i, vec := range di.Vectors {
		if len(vec) != di.Dimension {
			return fmt.Errorf("%w: row %d has %d components, want %d",
				ErrInvalidDocumentIndex, i, len(vec), di.Dimension)
		}
	}

	for i := range di.Chunks {
		if err := ValidateChunk(&di.Chunks[i]); err != nil {
			return fmt.Errorf("%w: row %d: %w", ErrInvalidDocumentIndex, i, err)
		}
	}

	return nil
}

// ValidateRole validates that a Role has a valid value.
func ValidateRole(role Role) error {
	if role != RoleUser && role != RoleAssistant {
		return fmt.Errorf("%w: value %d", ErrInvalidRole, role)
	}
	return nil
}
