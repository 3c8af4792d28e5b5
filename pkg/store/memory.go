package store

import (
	"context"
	"sync"

	"github.com/matzehuels/redline/pkg/batch"
)

// MemoryStore keeps batches in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	batches map[string][]byte
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{batches: make(map[string][]byte)}
}

// Save stores an encoded copy of b, so later changes to b are not visible.
func (s *MemoryStore) Save(_ context.Context, b *batch.Batch) error {
	if err := ValidateID(b.ID); err != nil {
		return err
	}
	data, err := batch.Marshal(b)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[b.ID] = data
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*batch.Batch, error) {
	s.mu.RLock()
	data, ok := s.batches[id]
	s.mu.RUnlock()
	if !ok {
		return nil, notFound(id)
	}
	return batch.Unmarshal(data)
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Summary, 0, len(s.batches))
	for _, data := range s.batches {
		b, err := batch.Unmarshal(data)
		if err != nil {
			continue
		}
		out = append(out, Summarize(b))
	}
	newestFirst(out)
	return out[:min(len(out), normalizeLimit(limit))], nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.batches[id]; !ok {
		return notFound(id)
	}
	delete(s.batches, id)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
