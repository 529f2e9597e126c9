package export

import (
	"strings"

	"github.com/cryptolog/registry/internal/domain"
)

// FileName and FileContentType describe the tab-separated download.
// The .xls extension makes Excel open the file with tab delimiters applied.
const (
	FileName        = "crypto_entries.xls"
	FileContentType = "application/vnd.ms-excel; charset=utf-8"
)

// clipboardHeader is the column order for single-row clipboard copies.
var clipboardHeader = []string{
	"Date", "Network", "Account", "Type", "Asset",
	"Qty Base", "Qty Quote", "Price USD", "Price BRL",
	"Total USD", "Total BRL", "Fee Asset", "Qty Fee", "Fee USD", "Fee BRL",
	"TxID", "Notes",
}

// fileHeader is the column order for full-list downloads.
// Asset comes before Type here, unlike the clipboard layout.
var fileHeader = []string{
	"Date", "Network", "Account", "Asset", "Type",
	"Qty Base", "Qty Quote", "Price USD", "Price BRL",
	"Total USD", "Total BRL", "Fee Asset", "Qty Fee", "Fee USD", "Fee BRL",
	"TxID", "Notes",
}

// brNumber renders an amount with a comma decimal separator, as expected
// by pt-BR Excel locales. Absent values render as an empty cell.
func brNumber(a domain.Amount) string {
	if !a.Valid {
		return ""
	}
	return strings.ReplaceAll(a.Decimal.String(), ".", ",")
}

func clipboardColumns(e domain.TransactionEntry) []string {
	return []string{
		e.Datetime,
		e.Network,
		e.Account,
		string(e.Type),
		e.PairLabel(),
		brNumber(e.QtyBase),
		brNumber(e.QtyQuote),
		brNumber(e.PriceUSD),
		brNumber(e.PriceBRL),
		brNumber(e.TotalUSD),
		brNumber(e.TotalBRL),
		e.FeeAsset,
		brNumber(e.QtyFee),
		brNumber(e.FeeUSD),
		brNumber(e.FeeBRL),
		e.TxID,
		e.Notes,
	}
}

func fileColumns(e domain.TransactionEntry) []string {
	asset := ""
	if e.Base != "" {
		asset = e.PairLabel()
	}
	return []string{
		e.Datetime,
		e.Network,
		e.Account,
		asset,
		string(e.Type),
		brNumber(e.QtyBase),
		brNumber(e.QtyQuote),
		brNumber(e.PriceUSD),
		brNumber(e.PriceBRL),
		brNumber(e.TotalUSD),
		brNumber(e.TotalBRL),
		e.FeeAsset,
		brNumber(e.QtyFee),
		brNumber(e.FeeUSD),
		brNumber(e.FeeBRL),
		e.TxID,
		e.Notes,
	}
}

// ClipboardTSV renders one entry as a header line plus one data line,
// CRLF-terminated, ready to paste into a spreadsheet.
func ClipboardTSV(e domain.TransactionEntry) string {
	var b strings.Builder
	b.WriteString(strings.Join(clipboardHeader, "\t"))
	b.WriteString("\r\n")
	b.WriteString(strings.Join(clipboardColumns(e), "\t"))
	b.WriteString("\r\n")
	return b.String()
}

// FileTSV renders the whole entry list as a tab-separated document
// with CRLF line endings.
func FileTSV(entries []domain.TransactionEntry) []byte {
	var b strings.Builder
	b.WriteString(strings.Join(fileHeader, "\t"))
	b.WriteString("\r\n")
	for _, e := range entries {
		b.WriteString(strings.Join(fileColumns(e), "\t"))
		b.WriteString("\r\n")
	}
	return []byte(b.String())
}
