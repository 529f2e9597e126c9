package domain

import "time"

// EntryType classifies a transaction as incoming or outgoing.
type EntryType string

const (
	EntryTypeIn  EntryType = "in"
	EntryTypeOut EntryType = "out"
)

// datetimeLayouts are accepted formats for an entry's date/time field,
// interpreted as UTC when no offset is given.
var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// TransactionEntry is one persisted record of the registry. Quantities,
// unit prices, totals and fee figures are optional amounts: absent means
// "not entered / not computed", which is never the same as zero.
type TransactionEntry struct {
	ID       string    `json:"id"`
	Datetime string    `json:"datetime"`
	Network  string    `json:"network"`
	Account  string    `json:"account"`
	Type     EntryType `json:"type"`

	Base     string `json:"base"`
	Quote    string `json:"quote"`
	QtyBase  Amount `json:"qtyBase"`
	QtyQuote Amount `json:"qtyQuote"`
	PriceUSD Amount `json:"priceUSD"`
	PriceBRL Amount `json:"priceBRL"`
	TotalUSD Amount `json:"totalUSD"`
	TotalBRL Amount `json:"totalBRL"`

	FeeAsset string `json:"feeAsset"`
	QtyFee   Amount `json:"qtyFee"`
	FeeUSD   Amount `json:"feeUSD"`
	FeeBRL   Amount `json:"feeBRL"`

	TxID  string `json:"txid"`
	Notes string `json:"notes"`
}

// Timestamp parses the entry's date/time field. The second return value
// is false when the field is empty or unparsable.
func (e TransactionEntry) Timestamp() (time.Time, bool) {
	if e.Datetime == "" {
		return time.Time{}, false
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.ParseInLocation(layout, e.Datetime, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// PairLabel renders the traded pair as "BASE/QUOTE".
func (e TransactionEntry) PairLabel() string {
	return e.Base + "/" + e.Quote
}
