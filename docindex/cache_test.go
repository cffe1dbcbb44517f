package docindex

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/quaerit/core"
	"github.com/poiesic/quaerit/storage"
	"github.com/poiesic/quaerit/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func builtIndex(source string) *core.DocumentIndex {
	return &core.DocumentIndex{
		Fingerprint: core.FingerprintFromSource(source),
		Source:      source,
		Dimension:   2,
		Vectors:     [][]float32{{1, 0}, {0, 1}},
		Chunks: []core.Chunk{
			{Text: "first chunk", Source: source, Page: 1},
			{Text: "second chunk", Source: source, Page: 2},
		},
		BuiltAt: time.Now().UTC(),
	}
}

func countingBuilder(source string, builds *atomic.Int32) BuildFunc {
	return func(ctx context.Context) (*core.DocumentIndex, error) {
		builds.Add(1)
		return builtIndex(source), nil
	}
}

func TestGetOrBuild_BuildsOnceThenHits(t *testing.T) {
	cache := New()
	var builds atomic.Int32
	ctx := context.Background()

	first, err := cache.GetOrBuild(ctx, "policy.txt", countingBuilder("policy.txt", &builds))
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "policy.txt", first.Source)
	assert.Equal(t, 2, first.Index.Len())

	second, err := cache.GetOrBuild(ctx, "policy.txt", countingBuilder("policy.txt", &builds))
	require.NoError(t, err)

	assert.Same(t, first, second, "cache hit should return the same entry")
	assert.Equal(t, int32(1), builds.Load(), "second call must not rebuild")
	assert.Equal(t, 1, cache.Len())
}

func TestGetOrBuild_ConcurrentCallersShareOneBuild(t *testing.T) {
	cache := New()
	var builds atomic.Int32

	build := func(ctx context.Context) (*core.DocumentIndex, error) {
		builds.Add(1)
		time.Sleep(50 * time.Millisecond) // Hold the flight open for all callers
		return builtIndex("shared.txt"), nil
	}

	const callers = 16
	entries := make([]*Entry, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entries[i], errs[i] = cache.GetOrBuild(context.Background(), "shared.txt", build)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), builds.Load(), "exactly one build should run")
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, entries[0], entries[i], "all callers should share the built entry")
	}
}

func TestGetOrBuild_FailurePropagatesAndIsNotCached(t *testing.T) {
	cache := New()
	buildErr := errors.New("download failed")
	var calls atomic.Int32

	failing := func(ctx context.Context) (*core.DocumentIndex, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return nil, buildErr
	}

	const callers = 8
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = cache.GetOrBuild(context.Background(), "broken.txt", failing)
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		assert.ErrorIs(t, errs[i], buildErr, "every waiter should see the build failure")
	}
	assert.Equal(t, 0, cache.Len(), "failed builds must not be cached")

	// The next call retries and can succeed.
	var builds atomic.Int32
	entry, err := cache.GetOrBuild(context.Background(), "broken.txt", countingBuilder("broken.txt", &builds))
	require.NoError(t, err)
	assert.NotNil(t, entry)
	assert.Equal(t, int32(1), builds.Load())
}

func TestGetOrBuild_DifferentSourcesBuildConcurrently(t *testing.T) {
	cache := New()

	firstStarted := make(chan struct{})
	secondDone := make(chan struct{})

	// The first build waits for the second to finish. This deadlocks
	// unless builds for different fingerprints run concurrently.
	buildFirst := func(ctx context.Context) (*core.DocumentIndex, error) {
		close(firstStarted)
		select {
		case <-secondDone:
		case <-time.After(2 * time.Second):
			return nil, errors.New("second build never ran; builds are serialized")
		}
		return builtIndex("first.txt"), nil
	}
	buildSecond := func(ctx context.Context) (*core.DocumentIndex, error) {
		defer close(secondDone)
		return builtIndex("second.txt"), nil
	}

	var wg sync.WaitGroup
	var firstErr, secondErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, firstErr = cache.GetOrBuild(context.Background(), "first.txt", buildFirst)
	}()
	go func() {
		defer wg.Done()
		<-firstStarted
		_, secondErr = cache.GetOrBuild(context.Background(), "second.txt", buildSecond)
	}()
	wg.Wait()

	require.NoError(t, firstErr)
	require.NoError(t, secondErr)
	assert.Equal(t, 2, cache.Len())
}

func TestGetOrBuild_NilBuilder(t *testing.T) {
	cache := New()
	ctx := context.Background()

	_, err := cache.GetOrBuild(ctx, "missing.txt", nil)
	assert.ErrorIs(t, err, ErrBuildRequired)

	// A cached entry is served without a builder.
	var builds atomic.Int32
	_, err = cache.GetOrBuild(ctx, "present.txt", countingBuilder("present.txt", &builds))
	require.NoError(t, err)

	entry, err := cache.GetOrBuild(ctx, "present.txt", nil)
	require.NoError(t, err)
	assert.NotNil(t, entry)
}

func TestGetOrBuild_NilIndexWithoutError(t *testing.T) {
	cache := New()

	_, err := cache.GetOrBuild(context.Background(), "odd.txt", func(ctx context.Context) (*core.DocumentIndex, error) {
		return nil, nil
	})

	assert.ErrorIs(t, err, ErrNilIndex)
}

func TestForget(t *testing.T) {
	cache := New()
	var builds atomic.Int32
	ctx := context.Background()

	_, err := cache.GetOrBuild(ctx, "policy.txt", countingBuilder("policy.txt", &builds))
	require.NoError(t, err)

	cache.Forget(core.FingerprintFromSource("policy.txt"))
	assert.Equal(t, 0, cache.Len())

	_, err = cache.GetOrBuild(ctx, "policy.txt", countingBuilder("policy.txt", &builds))
	require.NoError(t, err)
	assert.Equal(t, int32(2), builds.Load(), "forgotten entries rebuild")
}

func TestWithCapacity_EvictsLeastRecentlyUsed(t *testing.T) {
	cache := New(WithCapacity(2))
	var builds atomic.Int32
	ctx := context.Background()

	for _, source := range []string{"a.txt", "b.txt", "c.txt"} {
		_, err := cache.GetOrBuild(ctx, source, countingBuilder(source, &builds))
		require.NoError(t, err)
	}

	assert.Equal(t, 2, cache.Len())
	_, ok := cache.Get(core.FingerprintFromSource("a.txt"))
	assert.False(t, ok, "oldest entry should be evicted")
	_, ok = cache.Get(core.FingerprintFromSource("c.txt"))
	assert.True(t, ok)
}

func TestWithCapacity_HitProtectsEntry(t *testing.T) {
	cache := New(WithCapacity(2))
	var builds atomic.Int32
	ctx := context.Background()

	_, err := cache.GetOrBuild(ctx, "a.txt", countingBuilder("a.txt", &builds))
	require.NoError(t, err)
	_, err = cache.GetOrBuild(ctx, "b.txt", countingBuilder("b.txt", &builds))
	require.NoError(t, err)

	// Touch a so b becomes least recently used.
	_, err = cache.GetOrBuild(ctx, "a.txt", nil)
	require.NoError(t, err)

	_, err = cache.GetOrBuild(ctx, "c.txt", countingBuilder("c.txt", &builds))
	require.NoError(t, err)

	_, ok := cache.Get(core.FingerprintFromSource("a.txt"))
	assert.True(t, ok, "recently used entry should survive")
	_, ok = cache.Get(core.FingerprintFromSource("b.txt"))
	assert.False(t, ok, "least recently used entry should be evicted")
}

func TestWithStore_WriteThroughAndRestore(t *testing.T) {
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	var builds atomic.Int32

	warm := New(WithStore(store))
	_, err = warm.GetOrBuild(ctx, "durable.txt", countingBuilder("durable.txt", &builds))
	require.NoError(t, err)
	assert.Equal(t, int32(1), builds.Load())

	// A fresh cache over the same store restores without building.
	cold := New(WithStore(store))
	entry, err := cold.GetOrBuild(ctx, "durable.txt", countingBuilder("durable.txt", &builds))
	require.NoError(t, err)
	assert.Equal(t, int32(1), builds.Load(), "restore should not rebuild")
	assert.Equal(t, "durable.txt", entry.Source)
	assert.Equal(t, 2, entry.Index.Len())
}

// corruptStore serves an index whose rows do not match its chunks.
type corruptStore struct {
	loads atomic.Int32
}

func (s *corruptStore) Save(ctx context.Context, index *core.DocumentIndex) error { return nil }

func (s *corruptStore) Load(ctx context.Context, fingerprint core.Fingerprint) (*core.DocumentIndex, error) {
	s.loads.Add(1)
	index := builtIndex("corrupt.txt")
	index.Vectors = index.Vectors[:1] // row count no longer matches chunks
	return index, nil
}

func (s *corruptStore) Delete(ctx context.Context, fingerprint core.Fingerprint) error { return nil }

func (s *corruptStore) Fingerprints(ctx context.Context) ([]core.Fingerprint, error) { return nil, nil }

func (s *corruptStore) Close() error { return nil }

var _ storage.IndexStore = (*corruptStore)(nil)

func TestWithStore_InvalidStoredIndexFallsBackToBuild(t *testing.T) {
	store := &corruptStore{}
	cache := New(WithStore(store))
	var builds atomic.Int32

	entry, err := cache.GetOrBuild(context.Background(), "corrupt.txt", countingBuilder("corrupt.txt", &builds))

	require.NoError(t, err)
	assert.NotNil(t, entry)
	assert.Equal(t, int32(1), store.loads.Load(), "store should be consulted")
	assert.Equal(t, int32(1), builds.Load(), "invalid stored index should trigger a rebuild")
}
