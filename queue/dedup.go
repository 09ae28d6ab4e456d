package queue

import (
	"context"
	"sync"
)

// DedupStore tracks idempotency keys that have already been enqueued.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use. The queue
//   serializes its own calls under its lock, but a store shared by several
//   queue instances should still make MarkSeen a set-if-absent operation.
// - Context: methods must honor cancellation/deadlines where applicable.
type DedupStore interface {
	// Seen reports whether the key has been recorded.
	Seen(ctx context.Context, key string) (bool, error)

	// MarkSeen records the key.
	MarkSeen(ctx context.Context, key string) error
}

// MemoryDedupStore is an in-process DedupStore. Keys are held for the
// lifetime of the process.
type MemoryDedupStore struct {
	mu   sync.RWMutex
	keys map[string]struct{}
}

// NewMemoryDedupStore creates an empty in-memory dedup store.
func NewMemoryDedupStore() *MemoryDedupStore {
	return &MemoryDedupStore{
		keys: make(map[string]struct{}),
	}
}

// Seen reports whether the key has been recorded.
func (s *MemoryDedupStore) Seen(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	_, ok := s.keys[key]
	s.mu.RUnlock()
	return ok, nil
}

// MarkSeen records the key. Idempotent.
func (s *MemoryDedupStore) MarkSeen(_ context.Context, key string) error {
	s.mu.Lock()
	s.keys[key] = struct{}{}
	s.mu.Unlock()
	return nil
}

var _ DedupStore = (*MemoryDedupStore)(nil)
