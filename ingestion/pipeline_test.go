package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/poiesic/quaerit/ai"
	"github.com/poiesic/quaerit/ai/mock"
	"github.com/poiesic/quaerit/chunk"
	"github.com/poiesic/quaerit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher serves fixed bytes for any source.
type fakeFetcher struct {
	data        []byte
	contentType string
	err         error
}

func (f *fakeFetcher) Fetch(ctx context.Context, source string) ([]byte, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return f.data, f.contentType, nil
}

// wordChunker splits on words, grouping per page into fixed windows.
type wordChunker struct {
	windowWords int
}

func (c *wordChunker) Split(text string) []string {
	words := strings.Fields(text)
	var windows []string
	for start := 0; start < len(words); start += c.windowWords {
		end := start + c.windowWords
		if end > len(words) {
			end = len(words)
		}
		windows = append(windows, strings.Join(words[start:end], " "))
	}
	return windows
}

func (c *wordChunker) Annotate(windows []string, source string, page int) []core.Chunk {
	chunks := make([]core.Chunk, len(windows))
	for i, w := range windows {
		chunks[i] = core.Chunk{Text: w, Source: source, Page: page}
	}
	return chunks
}

func newTestPipeline(t *testing.T, fetcher Fetcher, embedder *mock.MockEmbedder, opts ...Option) *Pipeline {
	t.Helper()
	p, err := NewPipeline(fetcher, &wordChunker{windowWords: 3}, embedder, opts...)
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p
}

func TestNewPipeline_Validation(t *testing.T) {
	fetcher := &fakeFetcher{}
	chunker := &wordChunker{windowWords: 3}
	embedder := mock.NewMockEmbedder()

	tests := []struct {
		name    string
		run     func() (*Pipeline, error)
		wantErr error
	}{
		{
			name:    "nil fetcher",
			run:     func() (*Pipeline, error) { return NewPipeline(nil, chunker, embedder) },
			wantErr: ErrFetcherRequired,
		},
		{
			name:    "nil chunker",
			run:     func() (*Pipeline, error) { return NewPipeline(fetcher, nil, embedder) },
			wantErr: ErrChunkerRequired,
		},
		{
			name:    "nil embedder",
			run:     func() (*Pipeline, error) { return NewPipeline(fetcher, chunker, nil) },
			wantErr: ErrEmbedderRequired,
		},
		{
			name: "invalid retry attempts",
			run: func() (*Pipeline, error) {
				return NewPipeline(fetcher, chunker, embedder, WithRetry(0, 0))
			},
			wantErr: ErrInvalidMaxAttempts,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.run()
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestBuild(t *testing.T) {
	fetcher := &fakeFetcher{
		data:        []byte("alpha beta gamma delta epsilon zeta eta"),
		contentType: "text/plain",
	}
	p := newTestPipeline(t, fetcher, mock.NewMockEmbedder())

	index, err := p.Build(context.Background(), "policy.txt")

	require.NoError(t, err)
	assert.Equal(t, core.FingerprintFromSource("policy.txt"), index.Fingerprint)
	assert.Equal(t, "policy.txt", index.Source)
	assert.Equal(t, 384, index.Dimension)
	require.Len(t, index.Chunks, 3)
	require.Len(t, index.Vectors, 3)
	assert.Equal(t, "alpha beta gamma", index.Chunks[0].Text)
	assert.Equal(t, "delta epsilon zeta", index.Chunks[1].Text)
	assert.Equal(t, "eta", index.Chunks[2].Text)
	assert.False(t, index.BuiltAt.IsZero())
	require.NoError(t, core.ValidateDocumentIndex(index))
}

func TestBuild_PaginatedDocument(t *testing.T) {
	fetcher := &fakeFetcher{
		data:        []byte("page one words here\fpage two words here"),
		contentType: "text/plain",
	}
	p := newTestPipeline(t, fetcher, mock.NewMockEmbedder())

	index, err := p.Build(context.Background(), "paged.txt")

	require.NoError(t, err)
	require.Len(t, index.Chunks, 4)
	assert.Equal(t, 1, index.Chunks[0].Page)
	assert.Equal(t, 1, index.Chunks[1].Page)
	assert.Equal(t, 2, index.Chunks[2].Page)
	assert.Equal(t, 2, index.Chunks[3].Page)
}

func TestBuild_VectorsAreNormalized(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		// Deliberately non-unit vectors.
		out := make([][]float32, len(texts))
		for i := range out {
			out[i] = []float32{3, 4}
		}
		return out, nil
	}
	fetcher := &fakeFetcher{data: []byte("one two three four"), contentType: "text/plain"}
	p := newTestPipeline(t, fetcher, embedder)

	index, err := p.Build(context.Background(), "policy.txt")

	require.NoError(t, err)
	for _, vec := range index.Vectors {
		assert.InDelta(t, 0.6, vec[0], 1e-6)
		assert.InDelta(t, 0.8, vec[1], 1e-6)
	}
}

func TestBuild_FetchFailure(t *testing.T) {
	fetchErr := errors.New("connection refused")
	p := newTestPipeline(t, &fakeFetcher{err: fetchErr}, mock.NewMockEmbedder())

	_, err := p.Build(context.Background(), "http://example.com/doc")

	assert.ErrorIs(t, err, fetchErr)
}

func TestBuild_UnsupportedContentType(t *testing.T) {
	fetcher := &fakeFetcher{data: []byte("%PDF-1.7"), contentType: "application/pdf"}
	p := newTestPipeline(t, fetcher, mock.NewMockEmbedder())

	_, err := p.Build(context.Background(), "doc.pdf")

	assert.Error(t, err)
}

func TestBuild_EmptyDocument(t *testing.T) {
	fetcher := &fakeFetcher{data: []byte("   \n  "), contentType: "text/plain"}
	p := newTestPipeline(t, fetcher, mock.NewMockEmbedder())

	_, err := p.Build(context.Background(), "empty.txt")

	assert.Error(t, err)
}

func TestBuild_EmbeddingFailurePropagates(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedErr := fmt.Errorf("%w: backend unavailable", ai.ErrEmbeddingFailed)
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, embedErr
	}
	fetcher := &fakeFetcher{data: []byte("words to index here"), contentType: "text/plain"}
	p := newTestPipeline(t, fetcher, embedder, WithRetry(2, 0))

	_, err := p.Build(context.Background(), "policy.txt")

	assert.ErrorIs(t, err, embedErr)
	assert.ErrorIs(t, err, ai.ErrEmbeddingFailed)
}

func TestBuild_EmbeddingCountMismatch(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1, 0}}, nil // always one vector, regardless of input
	}
	fetcher := &fakeFetcher{data: []byte("one two three four five six"), contentType: "text/plain"}
	p := newTestPipeline(t, fetcher, embedder)

	_, err := p.Build(context.Background(), "policy.txt")

	assert.ErrorIs(t, err, ErrEmbeddingMismatch)
}

func TestBuild_ConcurrentBatchesPreserveOrder(t *testing.T) {
	// Identity-style embedder: vector encodes the text so order is
	// checkable after concurrent batch processing.
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i, text := range texts {
			out[i] = []float32{float32(len(text)), 1}
		}
		return out, nil
	}

	var words []string
	for i := 0; i < 120; i++ {
		words = append(words, fmt.Sprintf("w%03d", i))
	}
	fetcher := &fakeFetcher{data: []byte(strings.Join(words, " ")), contentType: "text/plain"}
	p := newTestPipeline(t, fetcher, embedder, WithBatchSize(4), WithPoolSize(8))

	index, err := p.Build(context.Background(), "ordered.txt")

	require.NoError(t, err)
	require.Len(t, index.Vectors, len(index.Chunks))
	for i, c := range index.Chunks {
		wantRatio := float32(len(c.Text))
		// Vectors are normalized; compare the component ratio instead.
		assert.InDelta(t, wantRatio, index.Vectors[i][0]/index.Vectors[i][1], 1e-3,
			"vector %d should correspond to its chunk", i)
	}
}

func TestBuildFromText(t *testing.T) {
	p := newTestPipeline(t, &fakeFetcher{}, mock.NewMockEmbedder())

	index, err := p.BuildFromText(context.Background(), "inline", "raw   text\nneeding cleanup here")

	require.NoError(t, err)
	require.Len(t, index.Chunks, 2)
	assert.Equal(t, "raw text needing", index.Chunks[0].Text)
	assert.Equal(t, "cleanup here", index.Chunks[1].Text)
	assert.Equal(t, 0, index.Chunks[0].Page)
}

func TestBuildFromText_Empty(t *testing.T) {
	p := newTestPipeline(t, &fakeFetcher{}, mock.NewMockEmbedder())

	_, err := p.BuildFromText(context.Background(), "inline", "   ")

	assert.ErrorIs(t, err, ErrNoChunks)
}

func TestBuild_WithRealChunker(t *testing.T) {
	tok, err := chunk.NewTiktokenTokenizer(chunk.EncodingCL100K)
	if err != nil {
		t.Skipf("tokenizer unavailable: %v", err)
	}
	chunker, err := chunk.NewChunker(tok, 32, 8)
	require.NoError(t, err)

	fetcher := &fakeFetcher{
		data:        []byte(strings.Repeat("The agreement may be terminated with thirty days notice. ", 20)),
		contentType: "text/plain",
	}
	p, err := NewPipeline(fetcher, chunker, mock.NewMockEmbedder())
	require.NoError(t, err)
	defer p.Release()

	index, err := p.Build(context.Background(), "policy.txt")

	require.NoError(t, err)
	assert.Greater(t, len(index.Chunks), 1)
	require.NoError(t, core.ValidateDocumentIndex(index))
}
