package exchangerate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cryptolog/registry/internal/domain"
)

// RateClient resolves a historical daily USD→BRL exchange rate.
type RateClient interface {
	USDToBRL(ctx context.Context, at time.Time) domain.Amount
}

// Client queries a historical daily exchange-rate service keyed by
// ISO calendar date (UTC).
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new exchange-rate client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type rateResponse struct {
	Rates map[string]json.Number `json:"rates"`
}

// USDToBRL returns the official USD→BRL rate for the UTC calendar date
// of the given instant. Failures degrade to absent.
func (c *Client) USDToBRL(ctx context.Context, at time.Time) domain.Amount {
	date := at.UTC().Format("2006-01-02")
	url := fmt.Sprintf("%s/%s?base=USD&symbols=BRL", c.baseURL, date)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		slog.Debug("exchange rate: creating request failed", "date", date, "error", err)
		return domain.Absent()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Debug("exchange rate: request failed", "date", date, "error", err)
		return domain.Absent()
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		slog.Debug("exchange rate: reading response failed", "date", date, "error", err)
		return domain.Absent()
	}

	if resp.StatusCode != http.StatusOK {
		slog.Debug("exchange rate: non-success response", "date", date, "status", resp.StatusCode)
		return domain.Absent()
	}

	var parsed rateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		slog.Debug("exchange rate: unparsable payload", "date", date, "error", err)
		return domain.Absent()
	}

	raw, ok := parsed.Rates["BRL"]
	if !ok {
		return domain.Absent()
	}
	d, err := decimal.NewFromString(raw.String())
	if err != nil {
		slog.Debug("exchange rate: unparsable rate", "date", date, "value", raw, "error", err)
		return domain.Absent()
	}
	return domain.AmountOf(d)
}
