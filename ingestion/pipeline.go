package ingestion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/quaerit/ai"
	"github.com/poiesic/quaerit/core"
	"github.com/poiesic/quaerit/extract"
	"github.com/poiesic/quaerit/vector"
)

const (
	// DefaultBatchSize is the number of chunks embedded per API call.
	DefaultBatchSize = 64

	// DefaultMaxRetries bounds retry attempts per embedding batch.
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the base delay for embedding retry backoff.
	DefaultRetryDelay = 1 * time.Second
)

// Fetcher retrieves raw document bytes and their content type.
type Fetcher interface {
	Fetch(ctx context.Context, source string) ([]byte, string, error)
}

// Chunker splits cleaned text into windows and annotates them.
type Chunker interface {
	Split(text string) []string
	Annotate(windows []string, source string, page int) []core.Chunk
}

// Pipeline builds document indexes from raw sources.
// It manages concurrent embedding of chunk batches.
type Pipeline struct {
	fetcher    Fetcher
	chunker    Chunker
	embedder   ai.Embedder
	pool       *ants.Pool
	batchSize  int
	maxRetries int
	retryDelay time.Duration
	progress   io.Writer
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithBatchSize sets the number of chunks embedded per API call.
// Default is DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.batchSize = size
		return nil
	}
}

// WithRetry configures retry behavior for embedding batches.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		p.maxRetries = maxAttempts
		p.retryDelay = baseDelay
		return nil
	}
}

// WithProgressWriter enables progress reporting during embedding,
// typically to os.Stderr for CLI builds.
func WithProgressWriter(w io.Writer) Option {
	return func(p *Pipeline) error {
		p.progress = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger.With("component", "pipeline")
		return nil
	}
}

// NewPipeline creates a new index build pipeline.
func NewPipeline(fetcher Fetcher, chunker Chunker, embedder ai.Embedder, opts ...Option) (*Pipeline, error) {
	if fetcher == nil {
		return nil, ErrFetcherRequired
	}
	if chunker == nil {
		return nil, ErrChunkerRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		fetcher:    fetcher,
		chunker:    chunker,
		embedder:   embedder,
		pool:       pool,
		batchSize:  DefaultBatchSize,
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		logger:     slog.Default().With("component", "pipeline"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Build fetches, extracts, chunks, and embeds the document at source,
// producing a complete index. The index fingerprint is derived from the
// source identifier.
func (p *Pipeline) Build(ctx context.Context, source string) (*core.DocumentIndex, error) {
	data, contentType, err := p.fetcher.Fetch(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", source, err)
	}

	extractor, err := extract.ForContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", source, err)
	}

	content, err := extractor.Extract(data)
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", source, err)
	}

	var chunks []core.Chunk
	for _, page := range content.Pages {
		windows := p.chunker.Split(page.Text)
		chunks = append(chunks, p.chunker.Annotate(windows, source, page.Number)...)
	}

	return p.assemble(ctx, source, chunks)
}

// BuildFromText builds an index directly from text already in hand,
// bypassing fetch and extraction. The text is cleaned the same way
// extracted documents are.
func (p *Pipeline) BuildFromText(ctx context.Context, source, text string) (*core.DocumentIndex, error) {
	cleaned := extract.Clean(text)
	windows := p.chunker.Split(cleaned)
	chunks := p.chunker.Annotate(windows, source, 0)
	return p.assemble(ctx, source, chunks)
}

func (p *Pipeline) assemble(ctx context.Context, source string, chunks []core.Chunk) (*core.DocumentIndex, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoChunks, source)
	}

	p.logger.Info("building document index", "source", source, "chunks", len(chunks))

	vectors, err := p.embedChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}

	dimension := len(vectors[0])
	for i, vec := range vectors {
		if len(vec) != dimension {
			return nil, fmt.Errorf("%w: row %d has width %d, expected %d",
				ErrEmbeddingMismatch, i, len(vec), dimension)
		}
	}

	index := &core.DocumentIndex{
		Fingerprint: core.FingerprintFromSource(source),
		Source:      source,
		Dimension:   dimension,
		Vectors:     vectors,
		Chunks:      chunks,
		BuiltAt:     time.Now().UTC(),
	}

	p.logger.Info("document index built",
		"source", source,
		"fingerprint", index.Fingerprint,
		"chunks", len(chunks),
		"dimension", dimension)
	return index, nil
}

// embedChunks embeds all chunks in concurrent batches, preserving chunk
// order. Every returned vector is unit-normalized.
func (p *Pipeline) embedChunks(ctx context.Context, chunks []core.Chunk) ([][]float32, error) {
	var tracker *ProgressTracker
	if p.progress != nil {
		tracker = NewProgressTracker(p.progress, len(chunks), p.batchSize)
		tracker.Start()
	}

	vectors := make([][]float32, len(chunks))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	setErr := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
	}

	for start := 0; start < len(chunks); start += p.batchSize {
		end := start + p.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batchStart, batchEnd := start, end

		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()

			texts := make([]string, batchEnd-batchStart)
			for i := range texts {
				texts[i] = chunks[batchStart+i].Text
			}

			var embeddings [][]float32
			err := RetryWithBackoff(ctx, func() error {
				var err error
				embeddings, err = p.embedder.EmbedTexts(ctx, texts)
				return err
			}, p.maxRetries, p.retryDelay)
			if err != nil {
				p.logger.Error("embedding batch failed", "offset", batchStart, "err", err)
				setErr(fmt.Errorf("embedding chunks %d-%d: %w", batchStart, batchEnd-1, err))
				return
			}
			if len(embeddings) != len(texts) {
				setErr(fmt.Errorf("%w: expected %d vectors, received %d",
					ErrEmbeddingMismatch, len(texts), len(embeddings)))
				return
			}

			// Batches write disjoint ranges, so no lock is needed here.
			for i, embedding := range embeddings {
				vectors[batchStart+i] = vector.Normalize(embedding)
			}

			if tracker != nil {
				tracker.Increment(len(texts))
			}
		})
		if submitErr != nil {
			wg.Done()
			setErr(submitErr)
			break
		}
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if tracker != nil {
		tracker.Finish()
	}
	return vectors, nil
}

// Release releases the embedding worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
