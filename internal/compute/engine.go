package compute

import (
	"context"
	"errors"
	"time"

	"github.com/samber/lo"

	"github.com/cryptolog/registry/internal/domain"
	"github.com/cryptolog/registry/internal/rates"
)

// ErrMissingTimestamp indicates the entry has no valid date/time, so no
// historical price can be looked up.
var ErrMissingTimestamp = errors.New("no valid date/time supplied")

// ErrNoPriceAvailable indicates that every queried source failed or
// returned nothing for both the base and fee assets.
var ErrNoPriceAvailable = errors.New("no historical price available for the listed assets")

// Engine fills in the derived numeric fields of a transaction entry from
// its raw inputs, resolving historical prices through the rates resolver.
type Engine struct {
	resolver *rates.Resolver
}

// NewEngine creates a new computation engine.
func NewEngine(resolver *rates.Resolver) *Engine {
	return &Engine{resolver: resolver}
}

// DeriveFields resolves the base and fee asset prices at the entry's
// timestamp and recomputes unit prices, quote quantity, totals and fee
// amounts. On error the entry is returned unchanged. A partial resolution
// (e.g. only a USD price) is applied; absent stays absent and is never
// coerced to a rounded zero.
func (e *Engine) DeriveFields(ctx context.Context, entry domain.TransactionEntry) (domain.TransactionEntry, error) {
	at, ok := entry.Timestamp()
	if !ok {
		return entry, ErrMissingTimestamp
	}

	lookup := e.resolver.NewLookup()
	base := domain.NormalizeSymbol(entry.Base)
	quote := domain.NormalizeSymbol(entry.Quote)

	// Base unit price in USD: the direct pair wins when the quote side is
	// USD-stable, then the USDT-quoted pair, then the USD-quoted one.
	var candidates []string
	if domain.IsUSDStable(quote) {
		candidates = append(candidates, base+quote)
	}
	candidates = lo.Uniq(append(candidates, base+"USDT", base+"USD"))

	priceUSD := domain.Absent()
	for _, symbol := range candidates {
		if priceUSD = lookup.PairPrice(ctx, symbol, at); priceUSD.Valid {
			break
		}
	}

	// Base unit price in BRL: direct quote before cross-rate derivation.
	priceBRL := lookup.PairPrice(ctx, base+"BRL", at)
	if !priceBRL.Valid && priceUSD.Valid {
		if rate := lookup.UsdToBrl(ctx, at); rate.Valid {
			priceBRL = domain.AmountOf(priceUSD.Decimal.Mul(rate.Decimal))
		}
	}

	// Fee asset price, independent of the trade pair.
	feePrice := lookup.AssetPrice(ctx, entry.FeeAsset, at)

	if !priceUSD.Valid && !priceBRL.Valid && feePrice.Empty() {
		return entry, ErrNoPriceAvailable
	}

	updated := entry
	updated.PriceUSD = priceUSD.Round(domain.PrecisionCrypto)
	updated.PriceBRL = priceBRL.Round(domain.PrecisionBRLPrice)

	updated.QtyQuote = domain.Absent()
	updated.TotalUSD = domain.Absent()
	updated.TotalBRL = domain.Absent()
	if entry.QtyBase.Valid && !entry.QtyBase.IsZero() {
		qty := entry.QtyBase
		updated.QtyQuote = qty.Mul(updated.PriceUSD).Round(domain.PrecisionCrypto)
		updated.TotalUSD = qty.Mul(updated.PriceUSD).Round(domain.PrecisionTotal)
		updated.TotalBRL = qty.Mul(updated.PriceBRL).Round(domain.PrecisionTotal)
	}

	updated.FeeUSD, updated.FeeBRL = e.deriveFee(ctx, lookup, entry, feePrice, at)

	return updated, nil
}

// deriveFee computes the fee amounts in both currencies from the fee
// quantity and the resolved fee-asset price. A zero or absent fee
// quantity produces no figures, regardless of resolved prices.
func (e *Engine) deriveFee(ctx context.Context, lookup *rates.Lookup, entry domain.TransactionEntry, feePrice domain.PriceQuote, at time.Time) (domain.Amount, domain.Amount) {
	qty := entry.QtyFee
	if !qty.Valid || qty.IsZero() {
		return domain.Absent(), domain.Absent()
	}

	switch {
	case domain.IsUSDStable(entry.FeeAsset):
		feeUSD := qty.Round(domain.PrecisionCrypto)
		rate := feePrice.BRL
		if !rate.Valid {
			rate = lookup.UsdToBrl(ctx, at)
		}
		return feeUSD, feeUSD.Mul(rate).Round(domain.PrecisionTotal)

	case feePrice.USD.Valid:
		feeUSD := qty.Mul(feePrice.USD).Round(domain.PrecisionCrypto)
		feeBRL := qty.Mul(feePrice.BRL).Round(domain.PrecisionTotal)
		if !feeBRL.Valid {
			feeBRL = feeUSD.Mul(lookup.UsdToBrl(ctx, at)).Round(domain.PrecisionTotal)
		}
		return feeUSD, feeBRL

	case feePrice.BRL.Valid:
		feeBRL := qty.Mul(feePrice.BRL).Round(domain.PrecisionTotal)
		feeUSD := domain.Absent()
		if rate := lookup.UsdToBrl(ctx, at); rate.Valid && !rate.Decimal.IsZero() {
			feeUSD = domain.AmountOf(qty.Decimal.Mul(feePrice.BRL.Decimal).Div(rate.Decimal)).Round(domain.PrecisionCrypto)
		}
		return feeUSD, feeBRL
	}

	return domain.Absent(), domain.Absent()
}
