package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/cryptolog/registry/internal/compute"
	"github.com/cryptolog/registry/internal/domain"
	"github.com/cryptolog/registry/internal/storage"
)

// ErrNotFound indicates that no entry with the given id exists.
var ErrNotFound = errors.New("entry not found")

// ErrInvalidEntry indicates the entry failed pre-save validation.
var ErrInvalidEntry = errors.New("invalid entry")

// ErrBusy indicates a price derivation is already in flight.
var ErrBusy = errors.New("price derivation already in progress")

// Service owns the entry list. The in-memory list is the single source of
// truth; it is loaded once at startup and the whole list is written back
// to storage on every mutation.
type Service struct {
	repo   storage.Repository
	engine *compute.Engine

	mu      sync.Mutex
	entries []domain.TransactionEntry

	deriving atomic.Bool
}

// NewService creates a registry service backed by the given repository.
func NewService(repo storage.Repository, engine *compute.Engine) *Service {
	return &Service{repo: repo, engine: engine}
}

// Load reads the persisted entry list into memory.
func (s *Service) Load(ctx context.Context) error {
	entries, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading registry: %w", err)
	}

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()

	slog.Info("registry loaded", "entries", len(entries))
	return nil
}

// List returns a copy of the entry list, newest first.
func (s *Service) List(_ context.Context) []domain.TransactionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries)
}

// Get returns the entry with the given id.
func (s *Service) Get(_ context.Context, id string) (domain.TransactionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return domain.TransactionEntry{}, ErrNotFound
}

// Create validates the entry, assigns it an id, prepends it to the list
// and persists the list.
func (s *Service) Create(ctx context.Context, entry domain.TransactionEntry) (domain.TransactionEntry, error) {
	if err := validate(entry); err != nil {
		return domain.TransactionEntry{}, err
	}
	entry.ID = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	updated := append([]domain.TransactionEntry{entry}, s.entries...)
	if err := s.persist(ctx, updated); err != nil {
		return domain.TransactionEntry{}, err
	}
	return entry, nil
}

// Update replaces the whole record with the given id.
func (s *Service) Update(ctx context.Context, entry domain.TransactionEntry) (domain.TransactionEntry, error) {
	if err := validate(entry); err != nil {
		return domain.TransactionEntry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.entries, func(e domain.TransactionEntry) bool { return e.ID == entry.ID })
	if i == -1 {
		return domain.TransactionEntry{}, ErrNotFound
	}

	updated := slices.Clone(s.entries)
	updated[i] = entry
	if err := s.persist(ctx, updated); err != nil {
		return domain.TransactionEntry{}, err
	}
	return entry, nil
}

// Delete removes the entry with the given id.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.entries, func(e domain.TransactionEntry) bool { return e.ID == id })
	if i == -1 {
		return ErrNotFound
	}

	updated := slices.Delete(slices.Clone(s.entries), i, i+1)
	return s.persist(ctx, updated)
}

// Derive runs the price computation engine on a draft entry. Overlapping
// invocations are rejected: one derivation runs at a time.
func (s *Service) Derive(ctx context.Context, draft domain.TransactionEntry) (domain.TransactionEntry, error) {
	if !s.deriving.CompareAndSwap(false, true) {
		return draft, ErrBusy
	}
	defer s.deriving.Store(false)

	return s.engine.DeriveFields(ctx, draft)
}

// persist writes the list through to storage and, on success, adopts it
// as the in-memory state. Caller holds the lock.
func (s *Service) persist(ctx context.Context, entries []domain.TransactionEntry) error {
	if err := s.repo.Save(ctx, entries); err != nil {
		return fmt.Errorf("persisting registry: %w", err)
	}
	s.entries = entries
	return nil
}

// validate applies the pre-save rules: a date/time, a base asset and a
// positive base quantity are required.
func validate(e domain.TransactionEntry) error {
	if _, ok := e.Timestamp(); !ok {
		return fmt.Errorf("%w: date/time is required", ErrInvalidEntry)
	}
	if domain.NormalizeSymbol(e.Base) == "" {
		return fmt.Errorf("%w: base asset is required", ErrInvalidEntry)
	}
	if !e.QtyBase.Valid || e.QtyBase.Decimal.Sign() <= 0 {
		return fmt.Errorf("%w: base quantity must be greater than zero", ErrInvalidEntry)
	}
	return nil
}
