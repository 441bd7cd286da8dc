package vector

import "math"

// CosineSimilarity compares two dense vectors of equal length. It returns 0
// when either vector is zero or the lengths differ.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Normalize scales v to unit L2 length in place and returns it. A zero vector
// is returned unchanged.
func Normalize(v SparseVector) SparseVector {
	norm := v.Norm()
	if norm == 0 {
		return v
	}
	for k := range v.Values {
		v.Values[k] /= norm
	}
	return v
}

// Dot is the inner product of two sparse vectors. For vectors produced by
// Normalize it equals their cosine similarity.
func Dot(a, b SparseVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			sum += a.Values[i] * b.Values[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// SparseCosine is CosineSimilarity for sparse vectors of any length.
func SparseCosine(a, b SparseVector) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	return Dot(a, b) / (na * nb)
}
