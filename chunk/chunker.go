package chunk

import (
	"fmt"

	"github.com/poiesic/quaerit/core"
)

const (
	// DefaultChunkSize is the default window length in tokens.
	DefaultChunkSize = 512
	// DefaultOverlap is the default number of tokens shared between
	// consecutive windows.
	DefaultOverlap = 64
)

// Chunker emits overlapping token windows over document text. A
// Chunker is immutable after construction and safe for concurrent use
// when its Tokenizer is.
type Chunker struct {
	tok     Tokenizer
	size    int
	overlap int
}

// NewChunker creates a Chunker producing windows of chunkSize tokens
// that advance by chunkSize-overlap each step. chunkSize must be
// positive and strictly greater than overlap, and overlap must not be
// negative; anything else would yield a non-advancing window and fails
// with ErrInvalidChunkConfig.
func NewChunker(tok Tokenizer, chunkSize, overlap int) (*Chunker, error) {
	if tok == nil {
		return nil, ErrTokenizerRequired
	}
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d must be positive", ErrInvalidChunkConfig, chunkSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap %d must not be negative", ErrInvalidChunkConfig, overlap)
	}
	if chunkSize <= overlap {
		return nil, fmt.Errorf("%w: chunk size %d must exceed overlap %d", ErrInvalidChunkConfig, chunkSize, overlap)
	}
	return &Chunker{tok: tok, size: chunkSize, overlap: overlap}, nil
}

// Split tokenizes text and returns successive windows decoded back to
// text. The final window may be shorter than the configured size; empty
// text yields no windows. Output is deterministic for fixed input and
// parameters.
func (c *Chunker) Split(text string) []string {
	tokens := c.tok.Encode(text)
	if len(tokens) == 0 {
		return nil
	}

	step := c.size - c.overlap
	windows := make([]string, 0, (len(tokens)+step-1)/step)
	for start := 0; start < len(tokens); start += step {
		end := min(start+c.size, len(tokens))
		windows = append(windows, c.tok.Decode(tokens[start:end]))
	}
	return windows
}

// Annotate turns windows produced by Split into chunk records for one
// document, attaching provenance and the best-effort clause-number
// annotation. Page 0 marks text that did not come from a page-aware
// extraction.
func (c *Chunker) Annotate(windows []string, source string, page int) []core.Chunk {
	chunks := make([]core.Chunk, 0, len(windows))
	for _, w := range windows {
		chunks = append(chunks, core.Chunk{
			Text:         w,
			Source:       source,
			Page:         page,
			ClauseNumber: ExtractClauseNumber(w),
		})
	}
	return chunks
}
