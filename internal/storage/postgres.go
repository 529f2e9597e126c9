package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cryptolog/registry/internal/domain"
)

// PgRepository implements Repository with PostgreSQL, holding the
// serialized list as a single JSONB document keyed by ListKey.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL entry-list repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Load(ctx context.Context) ([]domain.TransactionEntry, error) {
	var data []byte
	err := r.pool.QueryRow(ctx,
		`SELECT data FROM entry_lists WHERE key = $1`, ListKey).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading entry list: %w", err)
	}

	var entries []domain.TransactionEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decoding entry list: %w", err)
	}
	return entries, nil
}

func (r *PgRepository) Save(ctx context.Context, entries []domain.TransactionEntry) error {
	if entries == nil {
		entries = []domain.TransactionEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encoding entry list: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO entry_lists (key, data, updated_at)
		 VALUES ($1, $2::jsonb, NOW())
		 ON CONFLICT (key) DO UPDATE SET data = $2::jsonb, updated_at = NOW()`,
		ListKey, data)
	if err != nil {
		return fmt.Errorf("saving entry list: %w", err)
	}
	return nil
}
