package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// InMemoryRunStore implements RunStore for tests and unrecorded sessions.
type InMemoryRunStore struct {
	mu     sync.RWMutex
	runs   []Run
	nextID int64
}

// NewInMemoryRunStore creates a new in-memory store.
func NewInMemoryRunStore() *InMemoryRunStore {
	return &InMemoryRunStore{nextID: 1}
}

// RecordRun stores a copy of run.
func (s *InMemoryRunStore) RecordRun(ctx context.Context, run Run) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run.ID = s.nextID
	s.nextID++
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	run.Modules = slices.Clone(run.Modules)
	s.runs = append(s.runs, run)
	return run.ID, nil
}

// GetRun returns a run by ID.
func (s *InMemoryRunStore) GetRun(ctx context.Context, id int64) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.runs {
		if r.ID == id {
			r.Modules = slices.Clone(r.Modules)
			return &r, nil
		}
	}
	return nil, fmt.Errorf("run %d: %w", id, ErrRunNotFound)
}

// ListRuns returns runs newest first.
func (s *InMemoryRunStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Run, 0, len(s.runs))
	for i := len(s.runs) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		r := s.runs[i]
		r.Modules = slices.Clone(r.Modules)
		out = append(out, r)
	}
	return out, nil
}

// Close is a no-op.
func (s *InMemoryRunStore) Close() error {
	return nil
}
