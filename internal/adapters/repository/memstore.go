package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/okian/wellness/internal/domain/model"
)

const defaultMaxResults = 10000

// MemoryStore is an in-memory Store. Results are kept in submission order
// and evicted oldest first once maxResults is exceeded.
type MemoryStore struct {
	mu         sync.RWMutex
	results    map[uuid.UUID]model.JobResult
	order      []uuid.UUID
	maxResults int
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		results:    make(map[uuid.UUID]model.JobResult),
		maxResults: defaultMaxResults,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save inserts or replaces a result.
func (s *MemoryStore) Save(ctx context.Context, r model.JobResult) error {
	if r.JobID == uuid.Nil {
		return fmt.Errorf("save job result: missing job id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.results[r.JobID]; !ok {
		s.order = append(s.order, r.JobID)
	}
	s.results[r.JobID] = r

	for len(s.order) > s.maxResults {
		delete(s.results, s.order[0])
		s.order = s.order[1:]
	}
	return nil
}

// Get returns the result for id.
func (s *MemoryStore) Get(ctx context.Context, id uuid.UUID) (model.JobResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[id]
	if !ok {
		return model.JobResult{}, ErrNotFound
	}
	return r, nil
}

// Delete forgets id.
func (s *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.results[id]; !ok {
		return nil
	}
	delete(s.results, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Recent returns up to n results, newest first.
func (s *MemoryStore) Recent(ctx context.Context, n int) ([]model.JobResult, error) {
	if n <= 0 {
		return nil, ErrInvalidLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n > len(s.order) {
		n = len(s.order)
	}
	out := make([]model.JobResult, 0, n)
	for i := len(s.order) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.results[s.order[i]])
	}
	return out, nil
}

// Count returns the number of retained results.
func (s *MemoryStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}
