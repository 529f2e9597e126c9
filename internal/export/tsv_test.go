package export

import (
	"strings"
	"testing"

	"github.com/cryptolog/registry/internal/domain"
)

func sampleEntry() domain.TransactionEntry {
	return domain.TransactionEntry{
		ID:       "abc",
		Datetime: "2024-03-01T12:00",
		Network:  "ethereum",
		Account:  "main",
		Type:     domain.EntryTypeIn,
		Base:     "BTC",
		Quote:    "USDT",
		QtyBase:  domain.Normalize("0.5"),
		PriceUSD: domain.Normalize("60000"),
		PriceBRL: domain.Normalize("300000.1234"),
		TotalUSD: domain.Normalize("30000.00"),
		TotalBRL: domain.Normalize("150000.50"),
		FeeAsset: "BNB",
		QtyFee:   domain.Normalize("0.001"),
		TxID:     "0xdead",
		Notes:    "first buy",
	}
}

func TestClipboardTSV(t *testing.T) {
	out := ClipboardTSV(sampleEntry())

	lines := strings.Split(out, "\r\n")
	if len(lines) != 3 || lines[2] != "" {
		t.Fatalf("expected header + row + trailing CRLF, got %q", out)
	}

	headerCols := strings.Split(lines[0], "\t")
	if headerCols[3] != "Type" || headerCols[4] != "Asset" {
		t.Errorf("clipboard header order wrong: %v", headerCols[:5])
	}

	cols := strings.Split(lines[1], "\t")
	if len(cols) != len(clipboardHeader) {
		t.Fatalf("len(cols) = %d, want %d", len(cols), len(clipboardHeader))
	}
	if cols[4] != "BTC/USDT" {
		t.Errorf("asset = %q, want BTC/USDT", cols[4])
	}
	if cols[5] != "0,5" {
		t.Errorf("qty base = %q, want comma decimal 0,5", cols[5])
	}
	if cols[8] != "300000,1234" {
		t.Errorf("price BRL = %q, want 300000,1234", cols[8])
	}
	if cols[6] != "" {
		t.Errorf("absent qty quote should be an empty cell, got %q", cols[6])
	}
}

func TestFileTSVColumnOrder(t *testing.T) {
	out := string(FileTSV([]domain.TransactionEntry{sampleEntry()}))

	lines := strings.Split(out, "\r\n")
	if len(lines) != 3 || lines[2] != "" {
		t.Fatalf("expected header + row + trailing CRLF, got %q", out)
	}

	headerCols := strings.Split(lines[0], "\t")
	// The download layout puts Asset before Type.
	if headerCols[3] != "Asset" || headerCols[4] != "Type" {
		t.Errorf("file header order wrong: %v", headerCols[:5])
	}

	cols := strings.Split(lines[1], "\t")
	if cols[3] != "BTC/USDT" || cols[4] != "in" {
		t.Errorf("row order wrong: asset=%q type=%q", cols[3], cols[4])
	}
}

func TestFileTSVEmptyBaseHidesPair(t *testing.T) {
	e := sampleEntry()
	e.Base = ""

	out := string(FileTSV([]domain.TransactionEntry{e}))
	cols := strings.Split(strings.Split(out, "\r\n")[1], "\t")
	if cols[3] != "" {
		t.Errorf("asset = %q, want empty when base is missing", cols[3])
	}
}

func TestFileTSVEmptyList(t *testing.T) {
	out := string(FileTSV(nil))
	want := strings.Join(fileHeader, "\t") + "\r\n"
	if out != want {
		t.Errorf("empty export = %q, want header only", out)
	}
}
