package badger

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

// Backend wraps a BadgerDB instance holding serialized document
// indexes. Index blobs are written whole and replaced whole, so the
// database keeps a single version per key and skips value compression:
// embedding rows are high-entropy floats.
type Backend struct {
	db     *badger.DB
	logger *slog.Logger
}

// slogAdapter bridges badger's logger interface onto slog. Routine
// badger chatter (compaction, value log GC) lands at debug.
type slogAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*slogAdapter)(nil)

func (a *slogAdapter) Errorf(format string, args ...any) {
	a.logger.Error(fmt.Sprintf(format, args...))
}

func (a *slogAdapter) Warningf(format string, args ...any) {
	a.logger.Warn(fmt.Sprintf(format, args...))
}

func (a *slogAdapter) Infof(format string, args ...any) {
	a.logger.Debug(fmt.Sprintf(format, args...))
}

func (a *slogAdapter) Debugf(format string, args ...any) {
	a.logger.Debug(fmt.Sprintf(format, args...))
}

// OpenBackend opens the index database rooted at dir, creating the
// directory when missing. With inMemory set, dir is ignored and
// nothing touches disk; tests use this mode.
func OpenBackend(dir string, inMemory bool) (*Backend, error) {
	logger := slog.Default().With("component", "badger")

	var opts badger.Options
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		// MkdirAll also rejects a dir path that exists as a file.
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("preparing index directory: %w", err)
		}
		opts = badger.DefaultOptions(dir)
	}
	opts.Logger = &slogAdapter{logger: logger}
	opts.Compression = options.None
	opts.NumVersionsToKeep = 1

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}
	return &Backend{db: db, logger: logger}, nil
}

// Close closes the underlying database. Pending writes are flushed.
func (b *Backend) Close() error {
	return b.db.Close()
}

// IsClosed reports whether Close has completed.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// WithTx runs fn inside a badger transaction, read-write when isWrite
// is set. The transaction is discarded on return; write callbacks
// commit explicitly before returning.
func (b *Backend) WithTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	tx := b.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}
