// Package statsstore persists the lottery statistics snapshot so a restart
// does not force a refetch before the next drawing.
package statsstore

import (
	"context"
	"sync"

	"github.com/yanqian/omniluck/internal/domain/lottery"
)

// MemoryStore keeps the snapshot for the life of the process.
type MemoryStore struct {
	mu   sync.RWMutex
	snap lottery.Snapshot
	ok   bool
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) (lottery.Snapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap, s.ok, nil
}

func (s *MemoryStore) Save(_ context.Context, snap lottery.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap, s.ok = snap, true
	return nil
}

var _ lottery.StatsStore = (*MemoryStore)(nil)
