package export

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/cryptolog/registry/internal/domain"
)

const entriesSheet = "ENTRIES"

// SheetsWriter implements SheetWriter using the Google Sheets API.
type SheetsWriter struct {
	spreadsheetID string
	svc           *sheets.Service
}

// NewSheetsWriter creates a SheetsWriter authenticated with a service account JSON.
func NewSheetsWriter(ctx context.Context, spreadsheetID, credentialsJSON string) (*SheetsWriter, error) {
	creds, err := google.CredentialsFromJSON(
		ctx,
		[]byte(credentialsJSON),
		sheets.SpreadsheetsScope,
	)
	if err != nil {
		return nil, fmt.Errorf("parsing google credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	return &SheetsWriter{spreadsheetID: spreadsheetID, svc: svc}, nil
}

// Write ensures the ENTRIES sheet exists, then clears and rewrites it
// with the full entry list.
func (w *SheetsWriter) Write(ctx context.Context, entries []domain.TransactionEntry) error {
	if err := w.ensureSheets(ctx, entriesSheet); err != nil {
		return err
	}

	_, err := w.svc.Spreadsheets.Values.BatchClear(
		w.spreadsheetID,
		&sheets.BatchClearValuesRequest{
			Ranges: []string{entriesSheet + "!A:Q"},
		},
	).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clearing sheet: %w", err)
	}

	_, err = w.svc.Spreadsheets.Values.BatchUpdate(
		w.spreadsheetID,
		&sheets.BatchUpdateValuesRequest{
			ValueInputOption: "USER_ENTERED",
			Data: []*sheets.ValueRange{
				{Range: entriesSheet + "!A1", Values: buildEntryRows(entries)},
			},
		},
	).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("writing sheet: %w", err)
	}

	return nil
}

// buildEntryRows builds the ENTRIES sheet data: header plus one row per
// entry, file-export column order, numeric cells for amounts.
func buildEntryRows(entries []domain.TransactionEntry) [][]any {
	data := make([][]any, 0, len(entries)+1)

	header := make([]any, len(fileHeader))
	for i, h := range fileHeader {
		header[i] = h
	}
	data = append(data, header)

	for _, e := range entries {
		data = append(data, workbookRow(e))
	}

	return data
}

// ensureSheets creates any of the named sheets that do not already exist.
func (w *SheetsWriter) ensureSheets(ctx context.Context, names ...string) error {
	spreadsheet, err := w.svc.Spreadsheets.Get(w.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("getting spreadsheet metadata: %w", err)
	}

	existing := make(map[string]bool, len(spreadsheet.Sheets))
	for _, s := range spreadsheet.Sheets {
		existing[s.Properties.Title] = true
	}

	var requests []*sheets.Request
	for _, name := range names {
		if !existing[name] {
			requests = append(requests, &sheets.Request{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: name},
				},
			})
		}
	}

	if len(requests) == 0 {
		return nil
	}

	_, err = w.svc.Spreadsheets.BatchUpdate(
		w.spreadsheetID,
		&sheets.BatchUpdateSpreadsheetRequest{Requests: requests},
	).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("creating sheets: %w", err)
	}

	return nil
}
