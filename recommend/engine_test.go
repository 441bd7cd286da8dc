package recommend

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubenschmidt/reelmatch/catalog"
	"github.com/hubenschmidt/reelmatch/core"
	"github.com/hubenschmidt/reelmatch/features"
	"github.com/hubenschmidt/reelmatch/vector"
)

func fixture(t *testing.T) (*catalog.Catalog, *vector.Matrix) {
	t.Helper()
	data, err := os.ReadFile("../catalog/testdata/movies.csv")
	require.NoError(t, err)
	c, err := catalog.Parse(data)
	require.NoError(t, err)
	m, err := features.Build(context.Background(), c, nil)
	require.NoError(t, err)
	return c, m
}

func newEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	c, m := fixture(t)
	e, err := NewEngine(c, NewMatrixIndex(m), opts)
	require.NoError(t, err)
	return e
}

func TestRecommend_ExactTitle(t *testing.T) {
	e := newEngine(t, DefaultOptions())

	res, err := e.Recommend(context.Background(), "The Dark Knight")
	require.NoError(t, err)
	assert.Equal(t, "the dark knight", res.Query)
	assert.Equal(t, "the dark knight", res.Match)
	require.NotEmpty(t, res.Recommendations)

	top := res.Recommendations[0]
	assert.Equal(t, 1.0, top.Score)
	assert.Equal(t, res.MatchIndex, top.Index)
	assert.Equal(t, "The Dark Knight", top.Title)
}

func TestRecommend_NoMatch(t *testing.T) {
	e := newEngine(t, DefaultOptions())

	res, err := e.Recommend(context.Background(), "zzzzqqqxx")
	assert.ErrorIs(t, err, core.ErrNoMatch)
	assert.Empty(t, res.Recommendations)

	// cached no-match still reports the error
	_, err = e.Recommend(context.Background(), "zzzzqqqxx")
	assert.ErrorIs(t, err, core.ErrNoMatch)
}

func TestRecommend_EmptyQuery(t *testing.T) {
	e := newEngine(t, DefaultOptions())
	for _, q := range []string{"", "   ", "\t\n"} {
		_, err := e.Recommend(context.Background(), q)
		assert.ErrorIs(t, err, core.ErrEmptyQuery, "%q", q)
	}
}

func TestRecommend_Properties(t *testing.T) {
	e := newEngine(t, Options{Limit: 5, Cutoff: 0.6})
	c := e.Catalog()

	for _, title := range c.Titles() {
		res, err := e.Recommend(context.Background(), title)
		require.NoError(t, err, title)

		recs := res.Recommendations
		assert.LessOrEqual(t, len(recs), 5)
		for i := 1; i < len(recs); i++ {
			assert.GreaterOrEqual(t, recs[i-1].Score, recs[i].Score, title)
		}
	}
}

func TestRecommend_LimitCapsAtCatalogSize(t *testing.T) {
	e := newEngine(t, DefaultOptions())

	res, err := e.Recommend(context.Background(), "avatar")
	require.NoError(t, err)
	assert.Len(t, res.Recommendations, e.Catalog().Len())
	assert.LessOrEqual(t, len(res.Recommendations), DefaultLimit)
}

func TestRecommend_CaseInsensitive(t *testing.T) {
	e := newEngine(t, Options{Limit: 30, Cutoff: 0.6})

	a, err := e.Recommend(context.Background(), "Avatar")
	require.NoError(t, err)
	b, err := e.Recommend(context.Background(), "  aVaTaR ")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRecommend_Deterministic(t *testing.T) {
	uncached := newEngine(t, Options{Limit: 30, Cutoff: 0.6})
	cachedEngine := newEngine(t, DefaultOptions())

	first, err := uncached.Recommend(context.Background(), "toy story")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := uncached.Recommend(context.Background(), "toy story")
		require.NoError(t, err)
		assert.Equal(t, first, again)

		hit, err := cachedEngine.Recommend(context.Background(), "toy story")
		require.NoError(t, err)
		assert.Equal(t, first, hit)
	}
}

func TestRecommend_CacheReturnsCopies(t *testing.T) {
	e := newEngine(t, DefaultOptions())

	a, err := e.Recommend(context.Background(), "titanic")
	require.NoError(t, err)
	a.Recommendations[0].Title = "mutated"

	b, err := e.Recommend(context.Background(), "titanic")
	require.NoError(t, err)
	assert.Equal(t, "Titanic", b.Recommendations[0].Title)
}

func TestRecommend_FuzzyQuery(t *testing.T) {
	e := newEngine(t, DefaultOptions())

	res, err := e.Recommend(context.Background(), "iron mn 2")
	require.NoError(t, err)
	assert.Equal(t, "iron man 2", res.Match)
	assert.Equal(t, "Iron Man 2", res.Recommendations[0].Title)
}

func TestRecommend_ExcludeSelf(t *testing.T) {
	e := newEngine(t, Options{Limit: 3, Cutoff: 0.6, ExcludeSelf: true})

	res, err := e.Recommend(context.Background(), "batman begins")
	require.NoError(t, err)
	require.Len(t, res.Recommendations, 3)
	for _, r := range res.Recommendations {
		assert.NotEqual(t, res.MatchIndex, r.Index)
	}
}

func TestRecommend_SnapshotMatchesMatrix(t *testing.T) {
	c, m := fixture(t)
	opts := Options{Limit: 4, Cutoff: 0.6}

	ns, err := features.TopNeighbors(context.Background(), m, opts.Limit+1)
	require.NoError(t, err)
	snap, err := NewSnapshotIndex(ns, opts.Limit+1)
	require.NoError(t, err)

	fromMatrix, err := NewEngine(c, NewMatrixIndex(m), opts)
	require.NoError(t, err)
	fromSnapshot, err := NewEngine(c, snap, opts)
	require.NoError(t, err)

	for _, title := range c.Titles() {
		a, errA := fromMatrix.Recommend(context.Background(), title)
		b, errB := fromSnapshot.Recommend(context.Background(), title)
		require.NoError(t, errA)
		require.NoError(t, errB)
		assert.Equal(t, a, b, title)
	}
}

func TestRecommend_Concurrent(t *testing.T) {
	e := newEngine(t, Options{Limit: 30, Cutoff: 0.6, CacheSize: 4})
	want, err := e.Recommend(context.Background(), "the notebook")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := e.Recommend(context.Background(), "The Notebook")
			if err != nil {
				errs <- err
				return
			}
			if got.Match != want.Match || len(got.Recommendations) != len(want.Recommendations) {
				errs <- fmt.Errorf("unexpected result %+v", got)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestNewEngine_Validation(t *testing.T) {
	c, m := fixture(t)
	idx := NewMatrixIndex(m)

	_, err := NewEngine(c, idx, Options{Limit: 0, Cutoff: 0.6})
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	_, err = NewEngine(c, idx, Options{Limit: 30, Cutoff: 2})
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	small, err := vector.NewMatrix(1, []float64{1})
	require.NoError(t, err)
	_, err = NewEngine(c, NewMatrixIndex(small), DefaultOptions())
	assert.ErrorIs(t, err, core.ErrSnapshotMismatch)
}

func TestNewSnapshotIndex_Validation(t *testing.T) {
	_, err := NewSnapshotIndex([][]vector.Neighbor{{{Index: 0, Score: 1}}}, 0)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	_, err = NewSnapshotIndex([][]vector.Neighbor{{{Index: 0, Score: 1}}, {}}, 1)
	assert.ErrorIs(t, err, core.ErrSnapshotMismatch)

	idx, err := NewSnapshotIndex([][]vector.Neighbor{
		{{Index: 0, Score: 1}, {Index: 1, Score: 0.5}},
		{{Index: 1, Score: 1}, {Index: 0, Score: 0.5}},
	}, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, 2, idx.K())
	assert.Len(t, idx.Neighbors(0, 1), 1)
	assert.Len(t, idx.Neighbors(0, 10), 2)
}
