package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cryptolog/registry/internal/compute"
	"github.com/cryptolog/registry/internal/domain"
	"github.com/cryptolog/registry/internal/rates"
	"github.com/cryptolog/registry/internal/registry"
	"github.com/cryptolog/registry/internal/storage"
)

type fakeMarket struct {
	prices map[string]string
}

func (m fakeMarket) HistoricalPrice(_ context.Context, symbol string, _ time.Time) domain.Amount {
	if s, ok := m.prices[symbol]; ok {
		d, _ := decimal.NewFromString(s)
		return domain.AmountOf(d)
	}
	return domain.Absent()
}

type fakeRates struct{}

func (fakeRates) USDToBRL(_ context.Context, _ time.Time) domain.Amount {
	return domain.Absent()
}

func newTestMux(t *testing.T, apiKey string) (*http.ServeMux, *registry.Service) {
	t.Helper()
	market := fakeMarket{prices: map[string]string{"BTCUSDT": "60000", "USDTBRL": "5"}}
	engine := compute.NewEngine(rates.NewResolver(market, fakeRates{}))
	svc := registry.NewService(storage.NewMemoryRepository(), engine)
	return newMux(svc, apiKey), svc
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

const validBody = `{"datetime":"2024-03-01T12:00","base":"BTC","quote":"USDT","type":"in","qtyBase":"0,5"}`

func TestCreateAndListEntries(t *testing.T) {
	mux, _ := newTestMux(t, "")

	w := doJSON(t, mux, http.MethodPost, "/api/v1/entries", validBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", w.Code, w.Body.String())
	}

	var created domain.TransactionEntry
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if created.ID == "" {
		t.Error("created entry has no id")
	}
	if !created.QtyBase.Valid || created.QtyBase.Decimal.String() != "0.5" {
		t.Errorf("qtyBase = %v, want normalized 0.5", created.QtyBase)
	}

	w = doJSON(t, mux, http.MethodGet, "/api/v1/entries", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var list []domain.TransactionEntry
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(list) != 1 || list[0].ID != created.ID {
		t.Errorf("list = %v", list)
	}
}

func TestCreateEntryValidation(t *testing.T) {
	mux, _ := newTestMux(t, "")

	w := doJSON(t, mux, http.MethodPost, "/api/v1/entries", `{"base":"BTC"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}

	w = doJSON(t, mux, http.MethodPost, "/api/v1/entries", `{not json`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for malformed JSON", w.Code)
	}
}

func TestGetEntryNotFound(t *testing.T) {
	mux, _ := newTestMux(t, "")

	w := doJSON(t, mux, http.MethodGet, "/api/v1/entries/missing", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestUpdateAndDeleteEntry(t *testing.T) {
	mux, svc := newTestMux(t, "")

	created, err := svc.Create(context.Background(), domain.TransactionEntry{
		Datetime: "2024-03-01T12:00",
		Base:     "BTC",
		QtyBase:  domain.Normalize("1"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w := doJSON(t, mux, http.MethodPut, "/api/v1/entries/"+created.ID, validBody)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}
	var updated domain.TransactionEntry
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if updated.ID != created.ID || updated.Quote != "USDT" {
		t.Errorf("updated = %+v", updated)
	}

	w = doJSON(t, mux, http.MethodPut, "/api/v1/entries/missing", validBody)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}

	w = doJSON(t, mux, http.MethodDelete, "/api/v1/entries/"+created.ID, "")
	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
	w = doJSON(t, mux, http.MethodDelete, "/api/v1/entries/"+created.ID, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for second delete", w.Code)
	}
}

func TestDeriveEntry(t *testing.T) {
	mux, _ := newTestMux(t, "")

	w := doJSON(t, mux, http.MethodPost, "/api/v1/entries/derive", validBody)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}
	var derived domain.TransactionEntry
	if err := json.Unmarshal(w.Body.Bytes(), &derived); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if !derived.TotalUSD.Valid || derived.TotalUSD.Decimal.String() != "30000" {
		t.Errorf("totalUSD = %v, want 30000", derived.TotalUSD)
	}
}

func TestDeriveEntryMissingTimestamp(t *testing.T) {
	mux, _ := newTestMux(t, "")

	w := doJSON(t, mux, http.MethodPost, "/api/v1/entries/derive", `{"base":"BTC","qtyBase":"1"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422, body %s", w.Code, w.Body.String())
	}
}

func TestDeriveEntryNoPrice(t *testing.T) {
	mux, _ := newTestMux(t, "")

	body := `{"datetime":"2024-03-01T12:00","base":"UNLISTED","qtyBase":"1"}`
	w := doJSON(t, mux, http.MethodPost, "/api/v1/entries/derive", body)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422, body %s", w.Code, w.Body.String())
	}
}

func TestExportEntries(t *testing.T) {
	mux, svc := newTestMux(t, "")
	if _, err := svc.Create(context.Background(), domain.TransactionEntry{
		Datetime: "2024-03-01T12:00",
		Base:     "BTC",
		Quote:    "USDT",
		QtyBase:  domain.Normalize("0.5"),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w := doJSON(t, mux, http.MethodGet, "/api/v1/entries/export", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "vnd.ms-excel") {
		t.Errorf("content type = %q", ct)
	}
	if !strings.HasPrefix(w.Body.String(), "Date\tNetwork\tAccount\tAsset\tType") {
		t.Errorf("body does not start with file header: %q", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "0,5") {
		t.Error("amounts should use comma decimals")
	}

	w = doJSON(t, mux, http.MethodGet, "/api/v1/entries/export?format=xlsx", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("content type = %q", ct)
	}
}

func TestClipboardEntry(t *testing.T) {
	mux, svc := newTestMux(t, "")
	created, err := svc.Create(context.Background(), domain.TransactionEntry{
		Datetime: "2024-03-01T12:00",
		Base:     "BTC",
		Quote:    "USDT",
		QtyBase:  domain.Normalize("0.5"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w := doJSON(t, mux, http.MethodGet, "/api/v1/entries/"+created.ID+"/clipboard", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	lines := strings.Split(w.Body.String(), "\r\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + row, got %q", w.Body.String())
	}
	if !strings.HasPrefix(lines[0], "Date\tNetwork\tAccount\tType\tAsset") {
		t.Errorf("clipboard header order wrong: %q", lines[0])
	}
}

func TestMutatingRoutesRequireAuth(t *testing.T) {
	mux, _ := newTestMux(t, "secret-key")

	w := doJSON(t, mux, http.MethodPost, "/api/v1/entries", validBody)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated create status = %d, want 401", w.Code)
	}

	// Reads stay open.
	w = doJSON(t, mux, http.MethodGet, "/api/v1/entries", "")
	if w.Code != http.StatusOK {
		t.Errorf("list status = %d, want 200", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/entries", strings.NewReader(validBody))
	req.Header.Set("Authorization", "Bearer secret-key")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Errorf("authenticated create status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}
}
