package badger

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/quaerit/core"
	"github.com/poiesic/quaerit/storage"
)

// Store implements storage.IndexStore for BadgerDB.
type Store struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.IndexStore = (*Store)(nil)

// NewStore opens a BadgerDB-backed index store at the given path.
func NewStore(path string) (storage.IndexStore, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return newStore(backend), nil
}

func newStore(backend *Backend) *Store {
	return &Store{
		backend: backend,
		logger:  slog.Default().With("component", "index_store"),
	}
}

// Save persists a document index, replacing any existing index for the
// same fingerprint.
func (s *Store) Save(ctx context.Context, index *core.DocumentIndex) error {
	if err := core.ValidateDocumentIndex(index); err != nil {
		return err
	}

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		key := makeIndexKey(index.Fingerprint)
		value := storage.MarshalDocumentIndex(index)
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}

	s.logger.Debug("saved document index",
		"fingerprint", index.Fingerprint,
		"source", index.Source,
		"chunks", len(index.Chunks))
	return nil
}

// Load retrieves the index for a fingerprint.
func (s *Store) Load(ctx context.Context, fingerprint core.Fingerprint) (*core.DocumentIndex, error) {
	var result *core.DocumentIndex
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeIndexKey(fingerprint))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			result, err = storage.UnmarshalDocumentIndex(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes the index for a fingerprint. Deleting an absent
// fingerprint is not an error.
func (s *Store) Delete(ctx context.Context, fingerprint core.Fingerprint) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeIndexKey(fingerprint)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Fingerprints lists the fingerprints of all stored indexes.
func (s *Store) Fingerprints(ctx context.Context) ([]core.Fingerprint, error) {
	var fingerprints []core.Fingerprint
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentIndexPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if fp, ok := fingerprintFromKey(iter.Item().Key()); ok {
				fingerprints = append(fingerprints, fp)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return fingerprints, nil
}

// Close closes the underlying BadgerDB database.
func (s *Store) Close() error {
	return s.backend.Close()
}
