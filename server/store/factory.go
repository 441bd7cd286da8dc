package store

import (
	"fmt"
	"strings"
)

// NewStores creates lookup and snapshot stores based on the DSN.
// - Empty DSN: SQLite at data/reelmatch.db
// - "memory": in-process maps, nothing persisted
// - postgres:// or postgresql://: PostgreSQL
// - Anything else: SQLite at the specified path
func NewStores(dsn string) (LookupStore, SnapshotStore, error) {
	if dsn == "" {
		return NewSQLiteStores(DefaultSQLitePath)
	}

	if dsn == "memory" {
		return NewMemoryLookupStore(), NewMemorySnapshotStore(), nil
	}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		ls, ss, err := NewPostgresStores(dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		return ls, ss, nil
	}

	return NewSQLiteStores(dsn)
}
