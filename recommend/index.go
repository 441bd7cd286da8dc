package recommend

import (
	"github.com/hubenschmidt/reelmatch/core"
	"github.com/hubenschmidt/reelmatch/vector"
)

// Index yields the ranked neighbors of a catalog row.
type Index interface {
	// Neighbors returns at most k neighbors of row, best first. The row
	// itself is included and sorts first among equal scores.
	Neighbors(row, k int) []vector.Neighbor
	Len() int
}

// MatrixIndex ranks full similarity rows on demand.
type MatrixIndex struct {
	m *vector.Matrix
}

func NewMatrixIndex(m *vector.Matrix) *MatrixIndex {
	return &MatrixIndex{m: m}
}

func (x *MatrixIndex) Neighbors(row, k int) []vector.Neighbor {
	return vector.Rank(x.m.Row(row), row, k)
}

func (x *MatrixIndex) Len() int {
	return x.m.Len()
}

// SnapshotIndex serves precomputed neighbor lists. Every list holds the same
// ranking MatrixIndex would produce, truncated to K entries.
type SnapshotIndex struct {
	neighbors [][]vector.Neighbor
	k         int
}

// NewSnapshotIndex wraps neighbor lists of length k (or the row count, when
// smaller).
func NewSnapshotIndex(neighbors [][]vector.Neighbor, k int) (*SnapshotIndex, error) {
	if k <= 0 {
		return nil, core.WithContext(core.NewError("recommend.snapshot_index", core.ErrInvalidArgument), "k", k)
	}
	want := min(k, len(neighbors))
	for i, ns := range neighbors {
		if len(ns) != want {
			return nil, core.WithContext(
				core.WithContext(core.NewError("recommend.snapshot_index", core.ErrSnapshotMismatch), "row", i),
				"neighbors", len(ns))
		}
	}
	return &SnapshotIndex{neighbors: neighbors, k: k}, nil
}

// Neighbors returns at most k neighbors; k is capped at the snapshot depth.
func (x *SnapshotIndex) Neighbors(row, k int) []vector.Neighbor {
	ns := x.neighbors[row]
	if k > 0 && k < len(ns) {
		ns = ns[:k]
	}
	out := make([]vector.Neighbor, len(ns))
	copy(out, ns)
	return out
}

func (x *SnapshotIndex) Len() int {
	return len(x.neighbors)
}

// K is the snapshot depth.
func (x *SnapshotIndex) K() int {
	return x.k
}
