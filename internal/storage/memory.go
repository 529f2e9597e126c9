package storage

import (
	"context"
	"slices"
	"sync"

	"github.com/cryptolog/registry/internal/domain"
)

// MemoryRepository keeps the entry list in memory. Used in tests and for
// running without a database; contents are lost on shutdown.
type MemoryRepository struct {
	mu      sync.Mutex
	entries []domain.TransactionEntry
	saves   int
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Load(_ context.Context) ([]domain.TransactionEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.entries), nil
}

func (r *MemoryRepository) Save(_ context.Context, entries []domain.TransactionEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = slices.Clone(entries)
	r.saves++
	return nil
}

// Saves reports how many full rewrites happened.
func (r *MemoryRepository) Saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}
