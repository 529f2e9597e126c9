package domain

import (
	"strings"

	"github.com/samber/lo"
)

// usdStableAssets are the symbols whose USD price is pegged at exactly 1.
var usdStableAssets = []string{"USDT", "USDC", "BUSD", "USD"}

// NormalizeSymbol canonicalizes a ticker: trimmed, uppercase.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// IsUSDStable reports whether the symbol is a USD-pegged stable asset.
func IsUSDStable(symbol string) bool {
	return lo.Contains(usdStableAssets, NormalizeSymbol(symbol))
}

// PriceQuote is the resolved unit price of one asset at one instant.
// Either side may be present independently of the other.
type PriceQuote struct {
	USD Amount `json:"usd"`
	BRL Amount `json:"brl"`
}

// Empty reports whether neither currency resolved.
func (q PriceQuote) Empty() bool {
	return !q.USD.Valid && !q.BRL.Valid
}
