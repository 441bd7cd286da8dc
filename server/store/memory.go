package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
)

// MemoryLookupStore keeps lookups in process memory
type MemoryLookupStore struct {
	mu      sync.RWMutex
	lookups map[string]Lookup
	seq     map[string]int
	next    int
}

func NewMemoryLookupStore() *MemoryLookupStore {
	return &MemoryLookupStore{
		lookups: make(map[string]Lookup),
		seq:     make(map[string]int),
	}
}

func (s *MemoryLookupStore) Add(_ context.Context, l Lookup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups[l.ID] = l
	s.next++
	s.seq[l.ID] = s.next
	return nil
}

func (s *MemoryLookupStore) Get(_ context.Context, id string) (Lookup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.lookups[id]
	if !ok {
		return Lookup{}, ErrNotFound
	}
	return l, nil
}

func (s *MemoryLookupStore) List(_ context.Context, limit int) ([]Lookup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Lookup, 0, len(s.lookups))
	for _, l := range s.lookups {
		result = append(result, l)
	}
	slices.SortFunc(result, func(a, b Lookup) int {
		if c := cmp.Compare(b.Timestamp, a.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(s.seq[b.ID], s.seq[a.ID])
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *MemoryLookupStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lookups[id]; !ok {
		return ErrNotFound
	}
	delete(s.lookups, id)
	delete(s.seq, id)
	return nil
}

func (s *MemoryLookupStore) Summary(_ context.Context) (LookupSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.lookups) == 0 {
		return LookupSummary{}, nil
	}

	var totalLatency int64
	var matched int
	for _, l := range s.lookups {
		totalLatency += l.ElapsedMs
		if l.Found {
			matched++
		}
	}

	return LookupSummary{
		TotalLookups: len(s.lookups),
		Matched:      matched,
		Unmatched:    len(s.lookups) - matched,
		AvgLatencyMs: float64(totalLatency) / float64(len(s.lookups)),
	}, nil
}

func (s *MemoryLookupStore) Close() error {
	return nil
}

// MemorySnapshotStore keeps snapshots in process memory
type MemorySnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]Snapshot
}

func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{
		snapshots: make(map[string]Snapshot),
	}
}

func (s *MemorySnapshotStore) Save(_ context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snap.Fingerprint] = snap
	return nil
}

func (s *MemorySnapshotStore) Load(_ context.Context, fingerprint string) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[fingerprint]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return snap, nil
}

func (s *MemorySnapshotStore) Close() error {
	return nil
}
