package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/cryptolog/registry/internal/domain"
)

const workbookSheet = "Entries"

// WorkbookName is the suggested filename for .xlsx downloads.
const WorkbookName = "crypto_entries.xlsx"

// amountCell returns a cell value for an amount: a float for present
// values, nil for absent ones so the cell stays empty.
func amountCell(a domain.Amount) any {
	if !a.Valid {
		return nil
	}
	f, _ := a.Decimal.Float64()
	return f
}

func workbookRow(e domain.TransactionEntry) []any {
	asset := ""
	if e.Base != "" {
		asset = e.PairLabel()
	}
	return []any{
		e.Datetime,
		e.Network,
		e.Account,
		asset,
		string(e.Type),
		amountCell(e.QtyBase),
		amountCell(e.QtyQuote),
		amountCell(e.PriceUSD),
		amountCell(e.PriceBRL),
		amountCell(e.TotalUSD),
		amountCell(e.TotalBRL),
		e.FeeAsset,
		amountCell(e.QtyFee),
		amountCell(e.FeeUSD),
		amountCell(e.FeeBRL),
		e.TxID,
		e.Notes,
	}
}

// BuildWorkbook creates an .xlsx workbook with the same columns as the
// tab-separated file export, using real numeric cells for amounts.
func BuildWorkbook(entries []domain.TransactionEntry) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", workbookSheet); err != nil {
		return nil, fmt.Errorf("renaming sheet: %w", err)
	}

	header := make([]any, len(fileHeader))
	for i, h := range fileHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(workbookSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("writing header row: %w", err)
	}

	for i, e := range entries {
		row := workbookRow(e)
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("addressing row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(workbookSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	return f, nil
}

// WriteWorkbook serializes the entry list to .xlsx bytes.
func WriteWorkbook(entries []domain.TransactionEntry) ([]byte, error) {
	f, err := BuildWorkbook(entries)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serializing workbook: %w", err)
	}
	return buf.Bytes(), nil
}
