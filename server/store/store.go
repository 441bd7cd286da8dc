package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hubenschmidt/reelmatch/vector"
)

// ErrNotFound is returned when an entity is not found
var ErrNotFound = errors.New("not found")

// Lookup records one recommendation request
type Lookup struct {
	ID        string `json:"id"`
	Query     string `json:"query"`
	Match     string `json:"match"`
	Found     bool   `json:"found"`
	Results   int    `json:"results"`
	ElapsedMs int64  `json:"elapsed_ms"`
	Timestamp int64  `json:"timestamp"`
}

// LookupSummary contains aggregated lookup metrics
type LookupSummary struct {
	TotalLookups int     `json:"total_lookups"`
	Matched      int     `json:"matched"`
	Unmatched    int     `json:"unmatched"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

// Snapshot holds the top K neighbors of every catalog row. Fingerprint is
// the snapshot key the neighbors were computed for.
type Snapshot struct {
	Fingerprint string              `json:"fingerprint"`
	Rows        int                 `json:"rows"`
	K           int                 `json:"k"`
	CreatedAt   int64               `json:"created_at"`
	Neighbors   [][]vector.Neighbor `json:"neighbors"`
}

// LookupStore defines the interface for lookup history persistence
type LookupStore interface {
	Add(ctx context.Context, l Lookup) error
	Get(ctx context.Context, id string) (Lookup, error)
	// List returns the newest lookups first; limit <= 0 returns all of them.
	List(ctx context.Context, limit int) ([]Lookup, error)
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context) (LookupSummary, error)
	Close() error
}

// SnapshotStore defines the interface for neighbor snapshot persistence
type SnapshotStore interface {
	Save(ctx context.Context, s Snapshot) error
	Load(ctx context.Context, fingerprint string) (Snapshot, error)
	Close() error
}

type neighbor struct {
	I int     `json:"i"`
	S float64 `json:"s"`
}

func encodeNeighbors(ns [][]vector.Neighbor) ([]byte, error) {
	rows := make([][]neighbor, len(ns))
	for i, row := range ns {
		rows[i] = make([]neighbor, len(row))
		for j, n := range row {
			rows[i][j] = neighbor{I: n.Index, S: n.Score}
		}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("marshal neighbors: %w", err)
	}
	return data, nil
}

func decodeNeighbors(data []byte, rows int) ([][]vector.Neighbor, error) {
	var raw [][]neighbor
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal neighbors: %w", err)
	}
	if len(raw) != rows {
		return nil, fmt.Errorf("snapshot has %d neighbor rows, want %d", len(raw), rows)
	}
	out := make([][]vector.Neighbor, len(raw))
	for i, row := range raw {
		out[i] = make([]vector.Neighbor, len(row))
		for j, n := range row {
			out[i][j] = vector.Neighbor{Index: n.I, Score: n.S}
		}
	}
	return out, nil
}
