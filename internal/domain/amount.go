package domain

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Fraction-digit precisions used across the registry.
const (
	PrecisionCrypto   int32 = 8 // crypto quantities and USD unit prices
	PrecisionBRLPrice int32 = 4 // BRL unit price
	PrecisionTotal    int32 = 2 // totals and fee amounts in either currency
)

// Amount is an optional monetary value. Absent means "not entered / not
// computed", which is never the same as zero.
type Amount struct {
	decimal.NullDecimal
}

// Absent returns the "no value" amount.
func Absent() Amount {
	return Amount{}
}

// AmountOf wraps a decimal into a present amount.
func AmountOf(d decimal.Decimal) Amount {
	return Amount{decimal.NullDecimal{Decimal: d, Valid: true}}
}

// Round rounds a present amount half away from zero to the given number
// of fraction digits. Absence is preserved.
func (a Amount) Round(places int32) Amount {
	if !a.Valid {
		return a
	}
	return AmountOf(a.Decimal.Round(places))
}

// Mul multiplies two amounts; the result is absent if either side is.
func (a Amount) Mul(b Amount) Amount {
	if !a.Valid || !b.Valid {
		return Absent()
	}
	return AmountOf(a.Decimal.Mul(b.Decimal))
}

// IsZero reports whether the amount is a present zero.
func (a Amount) IsZero() bool {
	return a.Valid && a.Decimal.IsZero()
}

// UnmarshalJSON accepts null, a JSON number, or a string. Strings go
// through Normalize, so loosely-typed user input ("1,5") binds cleanly.
func (a *Amount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = Absent()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = Normalize(s)
		return nil
	}
	var d decimal.Decimal
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	*a = AmountOf(d)
	return nil
}

// MarshalJSON renders a present amount as a decimal string, absent as null.
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(a.Decimal)
}

// Normalize parses loosely-formatted numeric text into an amount.
// Commas are treated as decimal separators; when more than one separator
// survives, the first one wins and the remaining fraction digits are
// concatenated ("1.2.3" parses as 1.23). Stray characters are stripped.
// Empty or unparsable input yields absent, never zero.
func Normalize(text string) Amount {
	s := strings.TrimSpace(text)
	if s == "" {
		return Absent()
	}

	s = strings.ReplaceAll(s, ",", ".")

	if i := strings.Index(s, "."); i >= 0 {
		s = s[:i+1] + strings.ReplaceAll(s[i+1:], ".", "")
	}

	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	s = b.String()

	if s == "." || s == "-" || s == "-." {
		return Absent()
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Absent()
	}
	return AmountOf(d)
}

// FormatAmount renders an amount with comma group separators and up to
// maxFrac fraction digits, trailing zeros trimmed. Absent renders empty.
func FormatAmount(a Amount, maxFrac int32) string {
	if !a.Valid {
		return ""
	}
	return groupThousands(a.Decimal.Round(maxFrac).String(), ",", ".")
}

// FormatBRL renders an amount as a Brazilian currency string with exactly
// two fraction digits ("R$ 1.234,56"). Absent renders empty.
func FormatBRL(a Amount) string {
	if !a.Valid {
		return ""
	}
	s := groupThousands(a.Decimal.Round(PrecisionTotal).StringFixed(2), ".", ",")
	if strings.HasPrefix(s, "-") {
		return "-R$ " + s[1:]
	}
	return "R$ " + s
}

// groupThousands rewrites a plain decimal string using the given group
// and decimal separators. The input uses "." as its decimal separator.
func groupThousands(s, groupSep, decSep string) string {
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, fracPart, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
		if len(intPart) > lead {
			b.WriteString(groupSep)
		}
	}
	for i := lead; i < len(intPart); i += 3 {
		b.WriteString(intPart[i : i+3])
		if i+3 < len(intPart) {
			b.WriteString(groupSep)
		}
	}
	if hasFrac {
		b.WriteString(decSep)
		b.WriteString(fracPart)
	}
	return b.String()
}
