package storage

import (
	"context"

	"github.com/poiesic/quaerit/core"
)

// IndexStore persists built document indexes across processes.
// Implementations must be thread-safe and support concurrent access.
type IndexStore interface {
	// Save persists a document index, replacing any existing index for
	// the same fingerprint.
	Save(ctx context.Context, index *core.DocumentIndex) error

	// Load retrieves the index for a fingerprint.
	// Returns ErrNotFound if no index is stored for it.
	Load(ctx context.Context, fingerprint core.Fingerprint) (*core.DocumentIndex, error)

	// Delete removes the index for a fingerprint.
	// Deleting an absent fingerprint is not an error.
	Delete(ctx context.Context, fingerprint core.Fingerprint) error

	// Fingerprints lists the fingerprints of all stored indexes.
	Fingerprints(ctx context.Context) ([]core.Fingerprint, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
