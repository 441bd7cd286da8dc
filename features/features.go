// Package features turns catalog rows into TF-IDF vectors and the pairwise
// similarity matrix recommendations are read from.
package features

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/hubenschmidt/reelmatch/catalog"
	"github.com/hubenschmidt/reelmatch/core"
	"github.com/hubenschmidt/reelmatch/monitor"
	"github.com/hubenschmidt/reelmatch/vector"
)

// Fields lists the columns that make up a movie's feature text, in order.
var Fields = []string{
	catalog.ColumnGenres,
	catalog.ColumnKeywords,
	catalog.ColumnTagline,
	catalog.ColumnCast,
	catalog.ColumnDirector,
}

// CombinedText joins the feature fields of m with single spaces. Empty fields
// keep their separator.
func CombinedText(m catalog.Movie) string {
	return strings.Join([]string{m.Genres, m.Keywords, m.Tagline, m.Cast, m.Director}, " ")
}

// Documents returns the combined text of every movie in row order.
func Documents(c *catalog.Catalog) []string {
	docs := make([]string, c.Len())
	for i, m := range c.Movies {
		docs[i] = CombinedText(m)
	}
	return docs
}

// Build vectorizes the catalog and computes its similarity matrix, recording
// each stage on collector.
func Build(ctx context.Context, c *catalog.Catalog, collector monitor.MetricsCollector) (*vector.Matrix, error) {
	if c == nil || c.Len() == 0 {
		return nil, core.NewError("features.build", core.ErrEmptyCatalog)
	}
	if collector == nil {
		collector = monitor.NewNoOpCollector()
	}
	n := c.Len()

	var docs []string
	_ = monitor.Time(collector, monitor.StageCombine, n, func() error {
		docs = Documents(c)
		return nil
	})

	var vecs []vector.SparseVector
	_ = monitor.Time(collector, monitor.StageVectorize, n, func() error {
		vecs = vector.NewVectorizer().FitTransform(docs)
		return nil
	})

	var m *vector.Matrix
	err := monitor.Time(collector, monitor.StageSimilarity, n, func() error {
		var err error
		m, err = vector.Similarity(ctx, vecs)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("build features: %w", err)
	}
	return m, nil
}

// TopNeighbors ranks every row of m and keeps the first k entries of each.
// A row's own entry is included and sorts first among equal scores.
func TopNeighbors(ctx context.Context, m *vector.Matrix, k int) ([][]vector.Neighbor, error) {
	out := make([][]vector.Neighbor, m.Len())
	for i := range out {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		out[i] = vector.Rank(m.Row(i), i, k)
	}
	return out, nil
}

// SnapshotKey identifies precomputed neighbors for a dataset, feature field
// list and neighbor count. Snapshots saved under a different key are stale.
func SnapshotKey(fingerprint string, k int) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%d", fingerprint, strings.Join(Fields, ","), k)
	return hex.EncodeToString(h.Sum(nil))
}
