package anchor

import (
	"context"
	"encoding/hex"
	"sync"
)

// MemoryStore is an in-process Store for tests and dev mode. Append-only:
// digests are recorded once and never removed.
type MemoryStore struct {
	mu      sync.RWMutex
	digests map[[32]byte]uint64
	height  uint64
}

// NewMemoryStore creates an empty in-memory anchor store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		digests: make(map[[32]byte]uint64),
	}
}

// Put records the digest. Re-anchoring an existing digest returns the
// original receipt, mirroring the registry contract's idempotent write.
func (s *MemoryStore) Put(ctx context.Context, digest [32]byte) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	block, exists := s.digests[digest]
	if !exists {
		s.height++
		block = s.height
		s.digests[digest] = block
	}

	return &Receipt{
		TxHash:      "0x" + hex.EncodeToString(digest[:]),
		BlockNumber: block,
	}, nil
}

// Has reports whether the digest was recorded.
func (s *MemoryStore) Has(ctx context.Context, digest [32]byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.digests[digest]
	return exists, nil
}
