package rates

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cryptolog/registry/internal/binance"
	"github.com/cryptolog/registry/internal/domain"
	"github.com/cryptolog/registry/internal/exchangerate"
)

// usdToBrlPairs is the fixed preference order for the USD→BRL conversion:
// stablecoin market prices first, the official daily rate as last resort.
var usdToBrlPairs = []string{"USDTBRL", "USDCBRL"}

// one is the defined USD price of a USD-stable asset.
var one = decimal.NewFromInt(1)

// Resolver resolves asset prices in USD and BRL at a past instant.
type Resolver struct {
	market binance.MarketDataClient
	rates  exchangerate.RateClient
}

// NewResolver creates a new Resolver.
func NewResolver(market binance.MarketDataClient, rates exchangerate.RateClient) *Resolver {
	return &Resolver{market: market, rates: rates}
}

// UsdToBrl resolves the USD→BRL conversion rate at the given instant.
// Candidates are tried in order; the first present price wins.
func (r *Resolver) UsdToBrl(ctx context.Context, at time.Time) domain.Amount {
	for _, symbol := range usdToBrlPairs {
		if price := r.market.HistoricalPrice(ctx, symbol, at); price.Valid {
			return price
		}
	}
	return r.rates.USDToBRL(ctx, at)
}

// AssetPrice resolves an asset's unit price in both reference currencies
// with a fresh conversion lookup.
func (r *Resolver) AssetPrice(ctx context.Context, asset string, at time.Time) domain.PriceQuote {
	return r.NewLookup().AssetPrice(ctx, asset, at)
}

// Lookup is a single-invocation view of the Resolver. It memoizes the
// USD→BRL conversion so that one computation asks that question at most
// once, reusing the answer (present or absent) for every derivation.
type Lookup struct {
	resolver *Resolver

	usdBrl     domain.Amount
	usdBrlDone bool
}

// NewLookup starts a fresh per-invocation lookup.
func (r *Resolver) NewLookup() *Lookup {
	return &Lookup{resolver: r}
}

// PairPrice fetches the historical close for a trading pair symbol.
func (l *Lookup) PairPrice(ctx context.Context, symbol string, at time.Time) domain.Amount {
	return l.resolver.market.HistoricalPrice(ctx, symbol, at)
}

// UsdToBrl returns the memoized USD→BRL rate for this invocation.
func (l *Lookup) UsdToBrl(ctx context.Context, at time.Time) domain.Amount {
	if !l.usdBrlDone {
		l.usdBrl = l.resolver.UsdToBrl(ctx, at)
		l.usdBrlDone = true
	}
	return l.usdBrl
}

// AssetPrice resolves the asset's unit price in USD and BRL.
// USD-stable assets are pegged at 1 USD. Otherwise the USDT-quoted pair
// is preferred over the USD-quoted one, and a direct BRL quote is
// preferred over a cross-rate derivation via USD.
func (l *Lookup) AssetPrice(ctx context.Context, asset string, at time.Time) domain.PriceQuote {
	symbol := domain.NormalizeSymbol(asset)
	if symbol == "" {
		return domain.PriceQuote{}
	}

	if domain.IsUSDStable(symbol) {
		return domain.PriceQuote{
			USD: domain.AmountOf(one),
			BRL: l.UsdToBrl(ctx, at),
		}
	}

	usd := l.PairPrice(ctx, symbol+"USDT", at)
	if !usd.Valid {
		usd = l.PairPrice(ctx, symbol+"USD", at)
	}

	brl := l.PairPrice(ctx, symbol+"BRL", at)
	if !brl.Valid && usd.Valid {
		if rate := l.UsdToBrl(ctx, at); rate.Valid {
			brl = domain.AmountOf(usd.Decimal.Mul(rate.Decimal))
		}
	}

	return domain.PriceQuote{USD: usd, BRL: brl}
}
