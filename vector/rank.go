package vector

import (
	"cmp"
	"slices"
)

// Rank orders every entry of a similarity row by descending score and
// returns the first k (all of them when k <= 0).
//
// Ties keep original row order, except that self (the row the scores were
// measured from) sorts ahead of any entry with an equal score. Pass self < 0
// when the row has no owner.
func Rank(row []float64, self, k int) []Neighbor {
	results := make([]Neighbor, len(row))
	for i, s := range row {
		results[i] = Neighbor{Index: i, Score: s}
	}

	slices.SortStableFunc(results, func(a, b Neighbor) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		switch {
		case a.Index == self:
			return -1
		case b.Index == self:
			return 1
		}
		return 0
	})

	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results
}

// Without drops the neighbor with the given index, preserving order.
func Without(ns []Neighbor, index int) []Neighbor {
	out := make([]Neighbor, 0, len(ns))
	for _, n := range ns {
		if n.Index != index {
			out = append(out, n)
		}
	}
	return out
}
