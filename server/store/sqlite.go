package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hubenschmidt/reelmatch/server/store/migrations"
	_ "modernc.org/sqlite"
)

// DefaultSQLitePath is used when no DSN is configured
const DefaultSQLitePath = "data/reelmatch.db"

// SQLiteLookupStore implements LookupStore using SQLite
type SQLiteLookupStore struct {
	db *sql.DB
}

// SQLiteSnapshotStore implements SnapshotStore using SQLite
type SQLiteSnapshotStore struct {
	db *sql.DB
}

// NewSQLiteStores creates SQLite-backed lookup and snapshot stores
func NewSQLiteStores(dsn string) (LookupStore, SnapshotStore, error) {
	if dsn == "" {
		dsn = DefaultSQLitePath
	}

	dir := filepath.Dir(dsn)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := migrations.Apply(context.Background(), db, migrations.SQLite, "sqlite"); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteLookupStore{db: db}, &SQLiteSnapshotStore{db: db}, nil
}

// LookupStore implementation

func (s *SQLiteLookupStore) Add(ctx context.Context, l Lookup) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO lookups (
			id, query, matched_title, found, results, elapsed_ms, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.Query, l.Match, l.Found, l.Results, l.ElapsedMs, l.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert lookup: %w", err)
	}
	return nil
}

func (s *SQLiteLookupStore) Get(ctx context.Context, id string) (Lookup, error) {
	var l Lookup
	err := s.db.QueryRowContext(ctx, `
		SELECT id, query, matched_title, found, results, elapsed_ms, timestamp
		FROM lookups WHERE id = ?`, id).Scan(
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

func (s *SQLiteLookupStore) List(ctx context.Context, limit int) ([]Lookup, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, query, matched_title, found, results, elapsed_ms, timestamp
		FROM lookups ORDER BY timestamp DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query lookups: %w", err)
	}
	defer rows.Close()
	return scanLookups(rows)
}

func (s *SQLiteLookupStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM lookups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete lookup: %w", err)
	}
	return affected(res)
}

func (s *SQLiteLookupStore) Summary(ctx context.Context) (LookupSummary, error) {
	var m LookupSummary
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN found THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(elapsed_ms), 0)
		FROM lookups`).Scan(&m.TotalLookups, &m.Matched, &m.AvgLatencyMs)
	if err != nil {
		return m, fmt.Errorf("query summary: %w", err)
	}
	m.Unmatched = m.TotalLookups - m.Matched
	return m, nil
}

func (s *SQLiteLookupStore) Close() error {
	return s.db.Close()
}

// SnapshotStore implementation

func (s *SQLiteSnapshotStore) Save(ctx context.Context, snap Snapshot) error {
	data, err := encodeNeighbors(snap.Neighbors)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO snapshots (fingerprint, row_count, k, created_at, neighbors)
		VALUES (?, ?, ?, ?, ?)`,
		snap.Fingerprint, snap.Rows, snap.K, snap.CreatedAt, string(data),
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteSnapshotStore) Load(ctx context.Context, fingerprint string) (Snapshot, error) {
	var snap Snapshot
	var data string
	err := s.db.QueryRowContext(ctx, `
		SELECT fingerprint, row_count, k, created_at, neighbors
		FROM snapshots WHERE fingerprint = ?`, fingerprint).Scan(
		&snap.Fingerprint, &snap.Rows, &snap.K, &snap.CreatedAt, &data,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return snap, ErrNotFound
	}
	if err != nil {
		return snap, fmt.Errorf("query snapshot: %w", err)
	}

	snap.Neighbors, err = decodeNeighbors([]byte(data), snap.Rows)
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (s *SQLiteSnapshotStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanLookups(rows rowScanner) ([]Lookup, error) {
	lookups := []Lookup{}
	for rows.Next() {
		var l Lookup
		if err := rows.Scan(&l.ID, &l.Query, &l.Match, &l.Found, &l.Results, &l.ElapsedMs, &l.Timestamp); err != nil {
			return nil, fmt.Errorf("scan lookup: %w", err)
		}
		lookups = append(lookups, l)
	}
	return lookups, rows.Err()
}

func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
