package ai

import "errors"

var (
	// ErrGenerationFailed marks opaque failures at the answer
	// generation boundary (network, quota, model errors). Callers
	// surface these; they never interpret them.
	ErrGenerationFailed = errors.New("answer generation failed")

	// ErrEmbeddingFailed marks failures at the embedding boundary.
	// During an index build these surface as the build error.
	ErrEmbeddingFailed = errors.New("embedding failed")
)
