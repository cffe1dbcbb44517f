package docindex

import (
	"container/list"
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/poiesic/quaerit/core"
	"github.com/poiesic/quaerit/storage"
	"github.com/poiesic/quaerit/vector"
)

// BuildFunc produces a document index for an uncached source.
type BuildFunc func(ctx context.Context) (*core.DocumentIndex, error)

// Entry is a cached, search-ready document index. Entries are shared
// between callers and must be treated as immutable.
type Entry struct {
	Fingerprint core.Fingerprint
	Source      string
	Index       *vector.Index
	Chunks      []core.Chunk
	BuiltAt     time.Time
}

// Cache holds built document indexes keyed by source fingerprint.
// All methods are safe for concurrent use.
type Cache struct {
	mu       sync.RWMutex
	entries  map[core.Fingerprint]*Entry
	order    *list.List
	elems    map[core.Fingerprint]*list.Element
	capacity int

	group  singleflight.Group
	store  storage.IndexStore
	logger *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithStore adds a persistent layer. Built indexes are written through
// to the store, and cache misses consult it before building.
func WithStore(store storage.IndexStore) Option {
	return func(c *Cache) {
		c.store = store
	}
}

// WithCapacity bounds the number of in-memory entries, evicting the
// least recently used. Non-positive values leave the cache unbounded.
func WithCapacity(n int) Option {
	return func(c *Cache) {
		c.capacity = n
	}
}

// WithLogger sets the logger used by the cache.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger.With("component", "docindex")
	}
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[core.Fingerprint]*Entry),
		order:   list.New(),
		elems:   make(map[core.Fingerprint]*list.Element),
		logger:  slog.Default().With("component", "docindex"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrBuild returns the cached entry for source, building it if
// necessary. Concurrent calls for the same source share one build; a
// failed build is reported to every waiter and nothing is cached, so a
// later call will retry.
func (c *Cache) GetOrBuild(ctx context.Context, source string, build BuildFunc) (*Entry, error) {
	fingerprint := core.FingerprintFromSource(source)

	if entry, ok := c.lookup(fingerprint); ok {
		return entry, nil
	}

	v, err, shared := c.group.Do(fingerprint.String(), func() (any, error) {
		// A racing call may have finished the build while this one
		// waited for the flight lock.
		if entry, ok := c.lookup(fingerprint); ok {
			return entry, nil
		}

		if entry, ok := c.loadFromStore(ctx, fingerprint); ok {
			c.admit(entry)
			return entry, nil
		}

		if build == nil {
			return nil, ErrBuildRequired
		}

		index, err := build(ctx)
		if err != nil {
			return nil, err
		}
		if index == nil {
			return nil, ErrNilIndex
		}

		entry, err := newEntry(index)
		if err != nil {
			return nil, err
		}

		if c.store != nil {
			// Persistence is best effort; a write failure must not
			// discard a healthy in-memory build.
			if err := c.store.Save(ctx, index); err != nil {
				c.logger.Warn("failed to persist document index",
					"fingerprint", fingerprint, "err", err)
			}
		}

		c.admit(entry)
		return entry, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("build shared between concurrent callers", "fingerprint", fingerprint)
	}
	return v.(*Entry), nil
}

// Get returns the cached entry for a fingerprint without building.
func (c *Cache) Get(fingerprint core.Fingerprint) (*Entry, bool) {
	return c.lookup(fingerprint)
}

// Forget drops the in-memory entry for a fingerprint. The persistent
// store, if any, is left untouched.
func (c *Cache) Forget(fingerprint core.Fingerprint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(fingerprint)
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Fingerprints lists the fingerprints of all cached entries.
func (c *Cache) Fingerprints() []core.Fingerprint {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fingerprints := make([]core.Fingerprint, 0, len(c.entries))
	for fingerprint := range c.entries {
		fingerprints = append(fingerprints, fingerprint)
	}
	return fingerprints
}

// loadFromStore tries to restore an index from the persistent layer.
// Stored data crosses a trust boundary, so it is re-validated before
// use; anything invalid is discarded and rebuilt.
func (c *Cache) loadFromStore(ctx context.Context, fingerprint core.Fingerprint) (*Entry, bool) {
	if c.store == nil {
		return nil, false
	}

	index, err := c.store.Load(ctx, fingerprint)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			c.logger.Warn("failed to load stored index", "fingerprint", fingerprint, "err", err)
		}
		return nil, false
	}

	if err := core.ValidateDocumentIndex(index); err != nil {
		c.logger.Warn("stored index is invalid, rebuilding", "fingerprint", fingerprint, "err", err)
		return nil, false
	}

	entry, err := newEntry(index)
	if err != nil {
		c.logger.Warn("stored index is unusable, rebuilding", "fingerprint", fingerprint, "err", err)
		return nil, false
	}

	c.logger.Debug("restored index from store", "fingerprint", fingerprint, "chunks", len(entry.Chunks))
	return entry, true
}

func newEntry(index *core.DocumentIndex) (*Entry, error) {
	ix, err := vector.New(index.Vectors, index.Dimension)
	if err != nil {
		return nil, err
	}
	return &Entry{
		Fingerprint: index.Fingerprint,
		Source:      index.Source,
		Index:       ix,
		Chunks:      index.Chunks,
		BuiltAt:     index.BuiltAt,
	}, nil
}

func (c *Cache) lookup(fingerprint core.Fingerprint) (*Entry, bool) {
	if c.capacity <= 0 {
		c.mu.RLock()
		defer c.mu.RUnlock()
		entry, ok := c.entries[fingerprint]
		return entry, ok
	}

	// Bounded mode updates recency on every hit.
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[fingerprint]
	if ok {
		c.order.MoveToFront(c.elems[fingerprint])
	}
	return entry, ok
}

// admit inserts an entry, evicting the least recently used entries when
// over capacity.
func (c *Cache) admit(entry *Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[entry.Fingerprint] = entry
	if c.capacity <= 0 {
		return
	}

	if elem, ok := c.elems[entry.Fingerprint]; ok {
		c.order.MoveToFront(elem)
	} else {
		c.elems[entry.Fingerprint] = c.order.PushFront(entry.Fingerprint)
	}

	for len(c.entries) > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		evicted := oldest.Value.(core.Fingerprint)
		c.remove(evicted)
		c.logger.Debug("evicted index from cache", "fingerprint", evicted)
	}
}

// remove must be called with the write lock held.
func (c *Cache) remove(fingerprint core.Fingerprint) {
	delete(c.entries, fingerprint)
	if elem, ok := c.elems[fingerprint]; ok {
		c.order.Remove(elem)
		delete(c.elems, fingerprint)
	}
}
