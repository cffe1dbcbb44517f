package vector

import (
	"fmt"
	"sort"
)

// Hit is a single search result: the row id of a stored vector and its
// inner-product score against the query.
type Hit struct {
	ID    int
	Score float32
}

// Index is an exact similarity index over fixed-dimension vectors.
// Rows are stored unit-normalized in one flat row-major slice. The
// index is immutable after construction and safe for concurrent reads.
type Index struct {
	dim  int
	data []float32 // row-major, len == dim * rows
}

// New builds an index over the given vectors. Every vector must have
// exactly dimension components or the call fails with
// ErrDimensionMismatch. Vectors are normalized to unit length on
// ingest, so Search scores are cosine similarities.
func New(vectors [][]float32, dimension int) (*Index, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive, got %d", ErrDimensionMismatch, dimension)
	}

	ix := &Index{
		dim:  dimension,
		data: make([]float32, 0, len(vectors)*dimension),
	}
	for i, v := range vectors {
		if len(v) != dimension {
			return nil, fmt.Errorf("%w: row %d has %d components, want %d",
				ErrDimensionMismatch, i, len(v), dimension)
		}
		ix.data = append(ix.data, Normalize(v)...)
	}
	return ix, nil
}

// Dimension returns the fixed vector dimension of the index.
func (ix *Index) Dimension() int {
	return ix.dim
}

// Len returns the number of stored vectors.
func (ix *Index) Len() int {
	if ix.dim == 0 {
		return 0
	}
	return len(ix.data) / ix.dim
}

// Search returns the k nearest rows to query by inner product, ordered
// by descending score with ties broken by ascending id. Requesting more
// hits than the index holds returns every row. The query is used
// as-given: callers normalize it once before searching so that scores
// stay comparable across repeated and restricted searches.
func (ix *Index) Search(query []float32, k int) ([]Hit, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidK, k)
	}
	if len(query) != ix.dim {
		return nil, fmt.Errorf("%w: query has %d components, index stores %d",
			ErrDimensionMismatch, len(query), ix.dim)
	}

	n := ix.Len()
	hits := make([]Hit, 0, n)
	for id := 0; id < n; id++ {
		row := ix.data[id*ix.dim : (id+1)*ix.dim]
		var score float32
		for j, q := range query {
			score += q * row[j]
		}
		hits = append(hits, Hit{ID: id, Score: score})
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Score != hits[b].Score {
			return hits[a].Score > hits[b].Score
		}
		return hits[a].ID < hits[b].ID
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Reconstruct returns a copy of the stored (normalized) vector at the
// given row id. Out-of-range ids fail with ErrNotFound.
func (ix *Index) Reconstruct(id int) ([]float32, error) {
	if id < 0 || id >= ix.Len() {
		return nil, fmt.Errorf("%w: id %d, index holds %d rows", ErrNotFound, id, ix.Len())
	}
	out := make([]float32, ix.dim)
	copy(out, ix.data[id*ix.dim:(id+1)*ix.dim])
	return out, nil
}

// Restrict materializes a sub-index holding only the given rows, in the
// given order. Rows are copied verbatim, without re-normalization, so a
// search against the sub-index produces scores identical to the same
// rows' scores in the parent. The caller keeps the id slice to map
// sub-index hits back to parent rows.
func (ix *Index) Restrict(ids []int) (*Index, error) {
	sub := &Index{
		dim:  ix.dim,
		data: make([]float32, 0, len(ids)*ix.dim),
	}
	for _, id := range ids {
		if id < 0 || id >= ix.Len() {
			return nil, fmt.Errorf("%w: id %d, index holds %d rows", ErrNotFound, id, ix.Len())
		}
		sub.data = append(sub.data, ix.data[id*ix.dim:(id+1)*ix.dim]...)
	}
	return sub, nil
}
