package store

import (
	"context"
	"sort"
	"sync"
	"time"

	ferror "github.com/msto63/frege/foundation/core/error"
	"github.com/msto63/frege/foundation/script"
)

// MemoryRunStore is an in-memory implementation for tests and for running
// with history disabled on disk
type MemoryRunStore struct {
	mu   sync.RWMutex
	runs []*RunRecord
}

// NewMemoryRunStore creates a new in-memory run store
func NewMemoryRunStore() *MemoryRunStore {
	return &MemoryRunStore{
		runs: make([]*RunRecord, 0),
	}
}

// Record stores a copy of the run
func (s *MemoryRunStore) Record(ctx context.Context, rec *RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepare(rec)
	stored := *rec
	stored.Output = append([]string{}, rec.Output...)
	s.runs = append(s.runs, &stored)
	return nil
}

// Get returns a single run
func (s *MemoryRunStore) Get(ctx context.Context, id string) (*RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.runs {
		if rec.ID == id {
			found := *rec
			return &found, nil
		}
	}
	return nil, ferror.Wrap(ErrNotFound, "get run").
		WithCode(ferror.CodeNotFound).
		WithOperation("store.Get").
		WithRunID(id)
}

// List retrieves runs newest first
func (s *MemoryRunStore) List(ctx context.Context, filter RunFilter) ([]*RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*RunRecord
	for _, rec := range s.runs {
		if filter.Origin != "" && rec.Origin != filter.Origin {
			continue
		}
		if filter.OnlyFailed && !rec.Failed() {
			continue
		}
		if !filter.Since.IsZero() && rec.StartedAt.Before(filter.Since) {
			continue
		}
		found := *rec
		results = append(results, &found)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].StartedAt.After(results[j].StartedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(results) {
			return nil, nil
		}
		results = results[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(results) {
		results = results[:filter.Limit]
	}

	return results, nil
}

// Stats returns run statistics
func (s *MemoryRunStore) Stats(ctx context.Context) (*RunStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &RunStats{
		ByOrigin: make(map[Origin]int64),
		ByKind:   make(map[script.ErrorKind]int64),
	}
	for _, rec := range s.runs {
		stats.Total++
		stats.ByOrigin[rec.Origin]++
		if rec.Failed() {
			stats.Failed++
			stats.ByKind[rec.ErrorKind]++
		}
		if rec.StartedAt.After(stats.LastRun) {
			stats.LastRun = rec.StartedAt
		}
	}
	return stats, nil
}

// Prune removes old runs
func (s *MemoryRunStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	var deleted int64

	kept := make([]*RunRecord, 0, len(s.runs))
	for _, rec := range s.runs {
		if rec.StartedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, rec)
	}
	s.runs = kept

	return deleted, nil
}

// Close is a no-op for memory store
func (s *MemoryRunStore) Close() error {
	return nil
}
