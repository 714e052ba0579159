package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/acarvalho/p2p-quality/internal/runs"
)

// Store is an in-memory implementation of RunStore. It is safe for
// concurrent use. Data is lost on service restart; use a database-backed
// store when run history must survive deploys.
type Store struct {
	mu   sync.RWMutex
	runs map[string]*runs.QualityRun
}

// NewStore creates a new in-memory run store.
func NewStore() *Store {
	return &Store{
		runs: make(map[string]*runs.QualityRun),
	}
}

// SaveRun saves or updates a run in memory.
func (s *Store) SaveRun(ctx context.Context, run *runs.QualityRun) error {
	if run.RunID == "" {
		return fmt.Errorf("run ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy to shield the stored value from later mutation by the caller.
	runCopy := *run
	s.runs[run.RunID] = &runCopy
	return nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (*runs.QualityRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, exists := s.runs[runID]
	if !exists {
		return nil, fmt.Errorf("run not found: %s", runID)
	}

	runCopy := *run
	return &runCopy, nil
}

// ListRuns retrieves runs matching the filter, newest first.
func (s *Store) ListRuns(ctx context.Context, filter runs.RunFilter) ([]*runs.QualityRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*runs.QualityRun
	for _, run := range s.runs {
		if filter.Status != "" && run.Status != filter.Status {
			continue
		}
		runCopy := *run
		result = append(result, &runCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []*runs.QualityRun{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}

	return result, nil
}

var _ runs.RunStore = (*Store)(nil)
