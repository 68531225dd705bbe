// Package historyrepo stores one luck score per user and day.
package historyrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yanqian/omniluck/internal/domain/luck"
	"github.com/yanqian/omniluck/pkg/util"
)

// MemoryRepository keeps history in process memory for tests and local runs.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[string]map[string]luck.HistoryEntry
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{entries: make(map[string]map[string]luck.HistoryEntry)}
}

// Record replaces any earlier score for the same user and day.
func (r *MemoryRepository) Record(_ context.Context, entry luck.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	days, ok := r.entries[entry.UID]
	if !ok {
		days = make(map[string]luck.HistoryEntry)
		r.entries[entry.UID] = days
	}
	days[entry.Date] = entry
	return nil
}

// Recent lists entries on or after since, oldest first.
func (r *MemoryRepository) Recent(_ context.Context, uid string, since time.Time) ([]luck.HistoryEntry, error) {
	from := since.UTC().Format(util.DateLayout)
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []luck.HistoryEntry
	for date, entry := range r.entries[uid] {
		if date >= from {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

var _ luck.HistoryRepository = (*MemoryRepository)(nil)
