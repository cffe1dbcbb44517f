package chunk

import "errors"

var (
	// ErrInvalidChunkConfig is returned when the window parameters would
	// produce a non-advancing or non-terminating chunker.
	ErrInvalidChunkConfig = errors.New("invalid chunk configuration")

	// ErrTokenizerRequired is returned when a tokenizer is not provided.
	ErrTokenizerRequired = errors.New("tokenizer required")
)
