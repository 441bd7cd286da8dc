package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hubenschmidt/reelmatch/server/store/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresLookupStore implements LookupStore using PostgreSQL
type PostgresLookupStore struct {
	db *sql.DB
}

// PostgresSnapshotStore implements SnapshotStore using PostgreSQL
type PostgresSnapshotStore struct {
	db *sql.DB
}

// NewPostgresStores creates PostgreSQL-backed lookup and snapshot stores
func NewPostgresStores(dsn string) (LookupStore, SnapshotStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := migrations.Apply(ctx, db, migrations.Postgres, "postgres"); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresLookupStore{db: db}, &PostgresSnapshotStore{db: db}, nil
}

// LookupStore implementation

func (s *PostgresLookupStore) Add(ctx context.Context, l Lookup) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO lookups (
			id, query, matched_title, found, results, elapsed_ms, timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			query = EXCLUDED.query,
			matched_title = EXCLUDED.matched_title,
			found = EXCLUDED.found,
			results = EXCLUDED.results,
			elapsed_ms = EXCLUDED.elapsed_ms,
			timestamp = EXCLUDED.timestamp`,
		l.ID, l.Query, l.Match, l.Found, l.Results, l.ElapsedMs, l.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert lookup: %w", err)
	}
	return nil
}

func (s *PostgresLookupStore) Get(ctx context.Context, id string) (Lookup, error) {
	var l Lookup
	err := s.db.QueryRowContext(ctx, `
		SELECT id, query, matched_title, found, results, elapsed_ms, timestamp
		FROM lookups WHERE id = $1`, id).Scan(
		&l.ID, &l.Query, &l.Match, &l.Found, &l.Results, &l.ElapsedMs, &l.Timestamp,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return l, ErrNotFound
	}
	if err != nil {
		return l, fmt.Errorf("query lookup: %w", err)
	}
	return l, nil
}

func (s *PostgresLookupStore) List(ctx context.Context, limit int) ([]Lookup, error) {
	// A NULL limit means no limit.
	var lim sql.NullInt64
	if limit > 0 {
		lim = sql.NullInt64{Int64: int64(limit), Valid: true}
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, query, matched_title, found, results, elapsed_ms, timestamp
		FROM lookups ORDER BY timestamp DESC, id DESC LIMIT $1`, lim)
	if err != nil {
		return nil, fmt.Errorf("query lookups: %w", err)
	}
	defer rows.Close()
	return scanLookups(rows)
}

func (s *PostgresLookupStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM lookups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lookup: %w", err)
	}
	return affected(res)
}

func (s *PostgresLookupStore) Summary(ctx context.Context) (LookupSummary, error) {
	var m LookupSummary
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN found THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(elapsed_ms), 0)::DOUBLE PRECISION
		FROM lookups`).Scan(&m.TotalLookups, &m.Matched, &m.AvgLatencyMs)
	if err != nil {
		return m, fmt.Errorf("query summary: %w", err)
	}
	m.Unmatched = m.TotalLookups - m.Matched
	return m, nil
}

func (s *PostgresLookupStore) Close() error {
	return s.db.Close()
}

// SnapshotStore implementation

func (s *PostgresSnapshotStore) Save(ctx context.Context, snap Snapshot) error {
	data, err := encodeNeighbors(snap.Neighbors)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (fingerprint, row_count, k, created_at, neighbors)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (fingerprint) DO UPDATE SET
			row_count = EXCLUDED.row_count,
			k = EXCLUDED.k,
			created_at = EXCLUDED.created_at,
			neighbors = EXCLUDED.neighbors`,
		snap.Fingerprint, snap.Rows, snap.K, snap.CreatedAt, string(data),
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

func (s *PostgresSnapshotStore) Load(ctx context.Context, fingerprint string) (Snapshot, error) {
	var snap Snapshot
	var data []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT fingerprint, row_count, k, created_at, neighbors
		FROM snapshots WHERE fingerprint = $1`, fingerprint).Scan(
		&snap.Fingerprint, &snap.Rows, &snap.K, &snap.CreatedAt, &data,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return snap, ErrNotFound
	}
	if err != nil {
		return snap, fmt.Errorf("query snapshot: %w", err)
	}

	snap.Neighbors, err = decodeNeighbors(data, snap.Rows)
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (s *PostgresSnapshotStore) Close() error {
	return s.db.Close()
}
