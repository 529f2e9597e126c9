package binance

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

// window is the tolerance around the requested instant when selecting
// the 1-minute trade aggregate.
const window = 30 * time.Second

// MarketDataClient fetches historical trade prices for trading pairs.
type MarketDataClient interface {
	HistoricalPrice(ctx context.Context, symbol string, at time.Time) domain.Amount
}

// Client queries the Binance klines endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new market-data client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// HistoricalPrice returns the closing price of the smallest available
// trade aggregate covering [at-30s, at+30s] for the given pair symbol.
// Every failure mode degrades to absent: no price available for this
// pair at this time. Single attempt, no retry.
func (c *Client) HistoricalPrice(ctx context.Context, symbol string, at time.Time) domain.Amount {
	ts := at.UnixMilli()
	start := max(0, ts-window.Milliseconds())
	end := ts + window.Milliseconds()

	url := fmt.Sprintf("%s/api/v3/klines?symbol=%s&interval=1m&startTime=%d&endTime=%d&limit=1",
		c.baseURL, symbol, start, end)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		slog.Debug("klines: creating request failed", "symbol", symbol, "error", err)
		return domain.Absent()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Debug("klines: request failed", "symbol", symbol, "error", err)
		return domain.Absent()
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		slog.Debug("klines: reading response failed", "symbol", symbol, "error", err)
		return domain.Absent()
	}

	if resp.StatusCode != http.StatusOK {
		slog.Debug("klines: non-success response", "symbol", symbol, "status", resp.StatusCode)
		return domain.Absent()
	}

	return parseClose(symbol, body)
}

// parseClose extracts element 0's closing price (index 4 of a kline row).
func parseClose(symbol string, body []byte) domain.Amount {
	var klines [][]any
	if err := json.Unmarshal(body, &klines); err != nil {
		slog.Debug("klines: unparsable payload", "symbol", symbol, "error", err)
		return domain.Absent()
	}
	if len(klines) == 0 || len(klines[0]) < 5 {
		return domain.Absent()
	}

	closeStr, ok := klines[0][4].(string)
	if !ok {
		slog.Debug("klines: close price is not a string", "symbol", symbol)
		return domain.Absent()
	}

	d, err := decimal.NewFromString(closeStr)
	if err != nil {
		slog.Debug("klines: unparsable close price", "symbol", symbol, "value", closeStr, "error", err)
		return domain.Absent()
	}
	return domain.AmountOf(d)
}
