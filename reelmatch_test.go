package reelmatch

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubenschmidt/reelmatch/config"
	"github.com/hubenschmidt/reelmatch/core"
	"github.com/hubenschmidt/reelmatch/features"
	"github.com/hubenschmidt/reelmatch/monitor"
)

func testConfig(t *testing.T, dsn string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Dataset.Path = filepath.Join("catalog", "testdata", "movies.csv")
	cfg.Store.DSN = dsn
	return cfg
}

func TestBuild_ComputesThenReusesSnapshot(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "reelmatch.db")

	first, err := Build(ctx, testConfig(t, dsn))
	require.NoError(t, err)
	assert.False(t, first.FromSnapshot)
	assert.Equal(t, 11, first.Catalog.Len())
	for _, stage := range []string{monitor.StageLoad, monitor.StageCombine, monitor.StageVectorize, monitor.StageSimilarity, monitor.StageSnapshot} {
		assert.Contains(t, first.Stats.Stages, stage)
	}

	want, err := first.Engine.Recommend(ctx, "Batman Begins")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Build(ctx, testConfig(t, dsn))
	require.NoError(t, err)
	defer second.Close()
	assert.True(t, second.FromSnapshot)
	assert.NotContains(t, second.Stats.Stages, monitor.StageSimilarity)

	got, err := second.Engine.Recommend(ctx, "Batman Begins")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestBuild_SnapshotsDisabled(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, "memory")
	cfg.Store.Snapshots = false

	app, err := Build(ctx, cfg)
	require.NoError(t, err)
	defer app.Close()

	assert.False(t, app.FromSnapshot)
	assert.NotContains(t, app.Stats.Stages, monitor.StageSnapshot)

	_, err = app.Snapshots.Load(ctx, features.SnapshotKey(app.Catalog.Fingerprint, cfg.Recommend.Limit+1))
	assert.Error(t, err)
}

func TestBuild_LimitChangeInvalidatesSnapshot(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "reelmatch.db")

	app, err := Build(ctx, testConfig(t, dsn))
	require.NoError(t, err)
	require.NoError(t, app.Close())

	cfg := testConfig(t, dsn)
	cfg.Recommend.Limit = 5
	app, err = Build(ctx, cfg)
	require.NoError(t, err)
	defer app.Close()
	assert.False(t, app.FromSnapshot)

	res, err := app.Engine.Recommend(ctx, "avatar")
	require.NoError(t, err)
	assert.Len(t, res.Recommendations, 5)
}

func TestPrecompute(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, filepath.Join(t.TempDir(), "reelmatch.db"))
	cfg.Store.Snapshots = false

	app, snap, err := Precompute(ctx, cfg)
	require.NoError(t, err)
	defer app.Close()

	assert.Equal(t, app.Catalog.Len(), snap.Rows)
	assert.Equal(t, cfg.Recommend.Limit+1, snap.K)
	require.Len(t, snap.Neighbors, snap.Rows)
	assert.Len(t, snap.Neighbors[0], snap.Rows)
	assert.Equal(t, 0, snap.Neighbors[0][0].Index)
}

func TestBuild_Errors(t *testing.T) {
	ctx := context.Background()

	cfg := testConfig(t, "memory")
	cfg.Dataset.Path = filepath.Join(t.TempDir(), "missing.csv")
	_, err := Build(ctx, cfg)
	assert.Error(t, err)

	cfg = testConfig(t, "memory")
	cfg.Recommend.Limit = 0
	_, err = Build(ctx, cfg)
	assert.Error(t, err)
}

func TestApp_ServerAndRecommend(t *testing.T) {
	ctx := context.Background()
	app, err := Build(ctx, testConfig(t, "memory"))
	require.NoError(t, err)
	defer app.Close()

	srv, err := app.Server()
	require.NoError(t, err)
	assert.NotNil(t, srv.Handler())

	_, err = app.Engine.Recommend(ctx, "qqqqqqqqqq")
	assert.ErrorIs(t, err, core.ErrNoMatch)
}
