package vector

import "math"

// Normalize scales v to unit length, returning a new slice. A zero
// vector has no direction and comes back as a zero vector of the same
// length.
func Normalize(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	// Accumulate in float64: embedding vectors run to hundreds of
	// dimensions and float32 sums drift.
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}

	out := make([]float32, len(v))
	if sumSq == 0 {
		return out
	}

	inv := float32(1 / math.Sqrt(sumSq))
	for i, x := range v {
		out[i] = x * inv
	}
	return out
}
