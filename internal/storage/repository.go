package storage

import (
	"context"

	"github.com/cryptolog/registry/internal/domain"
)

// ListKey is the fixed key the serialized entry list is stored under.
const ListKey = "crypto-transaction-log"

// Repository persists the whole entry list. The list is loaded once at
// startup and rewritten in full on every mutation.
type Repository interface {
	Load(ctx context.Context) ([]domain.TransactionEntry, error)
	Save(ctx context.Context, entries []domain.TransactionEntry) error
}
