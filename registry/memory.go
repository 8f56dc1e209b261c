package registry

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store for tests and dev mode.
type MemoryStore struct {
	mu        sync.RWMutex
	tourists  map[string]Tourist
	locations map[string]Location
}

// NewMemoryStore creates an empty in-memory registry.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tourists:  make(map[string]Tourist),
		locations: make(map[string]Location),
	}
}

func (s *MemoryStore) PutTourist(ctx context.Context, t Tourist) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tourists[t.DID] = t
	return nil
}

func (s *MemoryStore) GetTourist(ctx context.Context, did string) (*Tourist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tourists[did]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (s *MemoryStore) PutLocation(ctx context.Context, l Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations[l.DID] = l
	return nil
}

func (s *MemoryStore) GetLocation(ctx context.Context, did string) (*Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.locations[did]
	if !ok {
		return nil, ErrNotFound
	}
	return &l, nil
}
