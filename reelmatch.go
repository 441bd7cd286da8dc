// Package reelmatch wires the catalog, feature builder, recommender and
// stores into a ready-to-serve application.
//
// Example usage:
//
//	cfg, err := config.Load("")
//	app, err := reelmatch.Build(ctx, cfg)
//	defer app.Close()
//	res, err := app.Engine.Recommend(ctx, "the dark knight")
package reelmatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hubenschmidt/reelmatch/catalog"
	"github.com/hubenschmidt/reelmatch/config"
	"github.com/hubenschmidt/reelmatch/features"
	"github.com/hubenschmidt/reelmatch/logging"
	"github.com/hubenschmidt/reelmatch/monitor"
	"github.com/hubenschmidt/reelmatch/recommend"
	"github.com/hubenschmidt/reelmatch/server"
	"github.com/hubenschmidt/reelmatch/server/store"
)

// App is a built recommender plus the stores it reads from and writes to.
type App struct {
	Config    *config.Config
	Catalog   *catalog.Catalog
	Engine    *recommend.Engine
	Lookups   store.LookupStore
	Snapshots store.SnapshotStore

	// Stats holds the stage timings of the startup build.
	Stats monitor.BuildMetrics
	// FromSnapshot reports whether the index was loaded from a stored
	// snapshot instead of being computed.
	FromSnapshot bool

	log zerolog.Logger
}

// Build loads the dataset and prepares the recommender. A stored neighbor
// snapshot for the same dataset is reused when snapshots are enabled;
// otherwise the similarity matrix is computed and, if enabled, saved.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	return build(ctx, cfg, false)
}

// Precompute rebuilds the similarity matrix and saves a fresh neighbor
// snapshot regardless of what is stored.
func Precompute(ctx context.Context, cfg *config.Config) (*App, store.Snapshot, error) {
	app, err := build(ctx, cfg, true)
	if err != nil {
		return nil, store.Snapshot{}, err
	}
	snap, err := app.Snapshots.Load(ctx, features.SnapshotKey(app.Catalog.Fingerprint, snapshotDepth(app.Config)))
	if err != nil {
		app.Close()
		return nil, store.Snapshot{}, fmt.Errorf("reload snapshot: %w", err)
	}
	return app, snap, nil
}

func build(ctx context.Context, cfg *config.Config, force bool) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	lookups, snapshots, err := store.NewStores(cfg.Store.DSN)
	if err != nil {
		return nil, fmt.Errorf("initialize stores: %w", err)
	}

	app := &App{
		Config:    cfg,
		Lookups:   lookups,
		Snapshots: snapshots,
		log:       logging.With("reelmatch"),
	}
	if err := app.load(ctx, force); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) load(ctx context.Context, force bool) error {
	collector := monitor.NewInMemoryCollector("")

	var c *catalog.Catalog
	err := monitor.Time(collector, monitor.StageLoad, 0, func() error {
		var err error
		c, err = catalog.Load(ctx, datasetSource(a.Config.Dataset))
		return err
	})
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	collector.SetFingerprint(c.Fingerprint)
	monitor.CatalogMovies.Set(float64(c.Len()))
	a.Catalog = c

	a.log.Info().
		Int("movies", c.Len()).
		Str("fingerprint", c.Fingerprint).
		Msg("catalog loaded")

	idx, err := a.index(ctx, collector, force)
	if err != nil {
		return err
	}

	rc := a.Config.Recommend
	engine, err := recommend.NewEngine(c, idx, recommend.Options{
		Limit:       rc.Limit,
		Cutoff:      rc.Cutoff,
		ExcludeSelf: rc.ExcludeSelf,
		CacheSize:   rc.CacheSize,
	})
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	a.Engine = engine
	a.Stats = collector.Flush()

	a.log.Info().
		Bool("from_snapshot", a.FromSnapshot).
		Dur("duration", a.Stats.TotalDuration).
		Msg("recommender ready")
	return nil
}

// index returns the stored snapshot for the catalog when usable, else
// computes the matrix and stores a snapshot of it.
func (a *App) index(ctx context.Context, collector *monitor.InMemoryCollector, force bool) (recommend.Index, error) {
	k := snapshotDepth(a.Config)
	key := features.SnapshotKey(a.Catalog.Fingerprint, k)
	useSnapshots := a.Config.Store.Snapshots || force

	if useSnapshots && !force {
		idx, err := a.loadSnapshot(ctx, key, k)
		if err == nil {
			a.FromSnapshot = true
			return idx, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			a.log.Warn().Err(err).Str("key", key).Msg("ignoring stored snapshot")
		}
	}

	m, err := features.Build(ctx, a.Catalog, collector)
	if err != nil {
		return nil, err
	}

	if useSnapshots {
		err := monitor.Time(collector, monitor.StageSnapshot, m.Len(), func() error {
			ns, err := features.TopNeighbors(ctx, m, k)
			if err != nil {
				return err
			}
			return a.Snapshots.Save(ctx, store.Snapshot{
				Fingerprint: key,
				Rows:        m.Len(),
				K:           k,
				CreatedAt:   time.Now().UnixMilli(),
				Neighbors:   ns,
			})
		})
		if err != nil {
			if force {
				return nil, fmt.Errorf("save snapshot: %w", err)
			}
			a.log.Warn().Err(err).Msg("save snapshot")
		}
	}

	return recommend.NewMatrixIndex(m), nil
}

func (a *App) loadSnapshot(ctx context.Context, key string, k int) (recommend.Index, error) {
	snap, err := a.Snapshots.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if snap.Rows != a.Catalog.Len() || snap.K < k {
		return nil, fmt.Errorf("snapshot has %d rows and depth %d, want %d rows and depth %d",
			snap.Rows, snap.K, a.Catalog.Len(), k)
	}
	return recommend.NewSnapshotIndex(snap.Neighbors, snap.K)
}

// Server creates the HTTP server for the app.
func (a *App) Server() (*server.Server, error) {
	sc := a.Config.Server
	return server.New(server.Config{
		Engine:       a.Engine,
		Lookups:      a.Lookups,
		Addr:         sc.Addr,
		ReadTimeout:  sc.ReadTimeout,
		WriteTimeout: sc.WriteTimeout,
		RateLimit:    sc.RateLimit,
	})
}

// Close releases the stores.
func (a *App) Close() error {
	var errs []error
	if a.Lookups != nil {
		if err := a.Lookups.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.Snapshots != nil {
		if err := a.Snapshots.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close stores: %w", errors.Join(errs...))
	}
	return nil
}

// snapshotDepth is the neighbor count stored per row: one more than the
// result limit so the matched row can be dropped.
func snapshotDepth(cfg *config.Config) int {
	return cfg.Recommend.Limit + 1
}

func datasetSource(dc config.DatasetConfig) catalog.Source {
	return catalog.Source{
		URL:        dc.URL,
		Path:       dc.Path,
		Timeout:    dc.Timeout,
		MaxRetries: dc.MaxRetries,
		MaxBytes:   dc.MaxBytes,
	}
}
