package vector

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Matrix is a dense, symmetric N×N similarity matrix stored row-major.
// It is never modified after Similarity returns.
type Matrix struct {
	n    int
	data []float64
}

// NewMatrix wraps row-major data; len(data) must be n*n.
func NewMatrix(n int, data []float64) (*Matrix, error) {
	if n < 0 || len(data) != n*n {
		return nil, fmt.Errorf("matrix data has %d cells, want %d", len(data), n*n)
	}
	return &Matrix{n: n, data: data}, nil
}

// Len returns the number of rows.
func (m *Matrix) Len() int {
	return m.n
}

// At returns the similarity between rows i and j.
func (m *Matrix) At(i, j int) float64 {
	return m.data[i*m.n+j]
}

// Row returns row i. The slice aliases the matrix and must not be modified.
func (m *Matrix) Row(i int) []float64 {
	return m.data[i*m.n : (i+1)*m.n]
}

// Similarity computes all-pairs cosine similarity of L2-normalized vectors.
// The diagonal is exactly 1 for non-zero vectors and 0 for zero vectors;
// other cells are clamped to [-1, 1].
func Similarity(ctx context.Context, vecs []SparseVector) (*Matrix, error) {
	n := len(vecs)
	data := make([]float64, n*n)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	// Row i owns cells (i, j>=i) and their mirrors (j, i), so no two
	// goroutines write the same cell.
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !vecs[i].IsZero() {
				data[i*n+i] = 1
			}
			for j := i + 1; j < n; j++ {
				s := clamp(Dot(vecs[i], vecs[j]))
				data[i*n+j] = s
				data[j*n+i] = s
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("similarity: %w", err)
	}

	return &Matrix{n: n, data: data}, nil
}

func clamp(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}
