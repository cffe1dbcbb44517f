package core

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// Fingerprint is a stable identifier for a document's retrieval source.
// It is generated by content-based hashing of the source identifier, so
// the same URL or path always maps to the same cache and storage key.
type Fingerprint uint64

// FingerprintFromSource generates a deterministic Fingerprint from a
// document source identifier using BLAKE2b hashing.
func FingerprintFromSource(source string) Fingerprint {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(source))
	sum := h.Sum(nil)
	return Fingerprint(binary.LittleEndian.Uint64(sum))
}

// String renders the fingerprint as a decimal string, used for
// single-flight keys and log fields.
func (f Fingerprint) String() string {
	return strconv.FormatUint(uint64(f), 10)
}

// Chunk is a contiguous span of document text plus its provenance
// metadata. Chunks are immutable once created: they are produced during
// indexing and never mutated afterward.
type Chunk struct {
	Text         string
	Source       string // Identifier of the originating document
	Page         int    // 1-based page number; 0 when extraction is not page-aware
	ClauseNumber string // Dotted-numeral heading like "4.2"; empty when none was found
}

// DocumentIndex is the durable product of building one document: the
// embedding matrix and the chunk metadata table, row-aligned so that
// Chunks[i] describes exactly the vector at Vectors[i]. That alignment
// must be re-verified with ValidateDocumentIndex whenever a record is
// loaded from storage.
type DocumentIndex struct {
	Fingerprint Fingerprint
	Source      string
	Dimension   int
	Vectors     [][]float32
	Chunks      []Chunk
	BuiltAt     time.Time
}

// ScoredChunk is a retrieval result: a chunk together with its raw
// similarity score. Scores are inner products over unit vectors and are
// never re-normalized, so results from different search strategies are
// numerically comparable.
type ScoredChunk struct {
	Chunk Chunk
	Score float32
}
