// Package core holds the domain model shared by the stores, the rule
// engine, and the reporting code.
//
// Money wraps an exact decimal value. All arithmetic stays in the decimal
// domain; conversion to float64 happens only at the presentation boundary
// and never feeds back into stored or compared values.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Money struct {
	d decimal.Decimal
}

// DefaultTolerance is one minimal currency unit, the default width of an
// amount-constrained rule's match window.
var DefaultTolerance = MustMoney("0.01")

func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{d: d}
}

func ZeroMoney() Money {
	return Money{d: decimal.Zero}
}

// MoneyFromString parses a display amount. Currency symbols, thousands
// separators and surrounding whitespace are tolerated so that values coming
// from CSV exports ("$1,234.56", " -382 ") parse directly.
func MoneyFromString(s string) (Money, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{d: d}, nil
}

// MustMoney parses s or panics. For constants and tests only.
func MustMoney(s string) Money {
	m, err := MoneyFromString(s)
	if err != nil {
		panic("core: bad money literal " + s)
	}
	return m
}

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }
func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }
func (m Money) Neg() Money        { return Money{d: m.d.Neg()} }
func (m Money) Abs() Money        { return Money{d: m.d.Abs()} }

func (m Money) Cmp(o Money) int     { return m.d.Cmp(o.d) }
func (m Money) Equal(o Money) bool  { return m.d.Equal(o.d) }
func (m Money) IsZero() bool        { return m.d.IsZero() }
func (m Money) IsNegative() bool    { return m.d.IsNegative() }
func (m Money) IsPositive() bool    { return m.d.IsPositive() }
func (m Money) Decimal() decimal.Decimal { return m.d }

// WithinTolerance reports whether |m - o| <= tol. The boundary is inclusive:
// a rule with amount 15.99 and tolerance 0.01 matches 16.00.
func (m Money) WithinTolerance(o, tol Money) bool {
	return m.d.Sub(o.d).Abs().Cmp(tol.d) <= 0
}

// String renders the exact stored value; this is also the canonical
// round-trip form persisted by the store.
func (m Money) String() string { return m.d.String() }

// Display renders with two fixed fraction digits for user-facing output.
func (m Money) Display() string { return m.d.StringFixed(2) }

// Float64 is for charting and other presentation-only consumers.
func (m Money) Float64() float64 { return m.d.InexactFloat64() }

// PercentChange returns (m-prev)/prev*100, or ok=false when prev is zero
// (the caller renders "N/A" instead of dividing).
func PercentChange(prev, cur Money) (decimal.Decimal, bool) {
	if prev.IsZero() {
		return decimal.Zero, false
	}
	hundred := decimal.NewFromInt(100)
	return cur.d.Sub(prev.d).Div(prev.d).Mul(hundred), true
}
