package export

import (
	"context"
	"fmt"

	"github.com/cryptolog/registry/internal/domain"
)

// EntrySource supplies the current entry list.
type EntrySource interface {
	List(ctx context.Context) []domain.TransactionEntry
}

// SheetWriter writes the entry list to a spreadsheet destination.
type SheetWriter interface {
	Write(ctx context.Context, entries []domain.TransactionEntry) error
}

// Service reads the entry list and delegates writing to a SheetWriter.
type Service struct {
	entries EntrySource
	writer  SheetWriter
}

// NewService creates a new export Service.
func NewService(entries EntrySource, writer SheetWriter) *Service {
	return &Service{entries: entries, writer: writer}
}

// Export pushes the full entry list through the configured writer.
func (s *Service) Export(ctx context.Context) error {
	if err := s.writer.Write(ctx, s.entries.List(ctx)); err != nil {
		return fmt.Errorf("writing entries: %w", err)
	}
	return nil
}
