// Package vector provides TF-IDF vectorization, cosine similarity and the
// dense similarity matrix recommendations are read from.
package vector

import "math"

// SparseVector holds the non-zero entries of a feature vector. Indices are
// strictly increasing vocabulary positions.
type SparseVector struct {
	Indices []int     `json:"indices"`
	Values  []float64 `json:"values"`
}

// Norm returns the L2 norm.
func (v SparseVector) Norm() float64 {
	var sum float64
	for _, x := range v.Values {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// IsZero reports whether the vector has no non-zero entries.
func (v SparseVector) IsZero() bool {
	return len(v.Indices) == 0
}

// Dense expands the vector to the given dimension.
func (v SparseVector) Dense(dim int) []float64 {
	out := make([]float64, dim)
	for k, i := range v.Indices {
		out[i] = v.Values[k]
	}
	return out
}

// Neighbor is a row of the similarity matrix together with its score.
type Neighbor struct {
	Index int     `json:"index"`
	Score float64 `json:"score"` // cosine similarity
}
