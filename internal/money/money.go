// Package money holds the fixed-point amount type used by every ledger computation.
//
// Amounts are integer counts of minor currency units (paise, cents). Decimal
// major-unit values only appear at the edges, when converting user input or
// rendering a value for display.
package money

import (
	"fmt"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// MinorUnitExponent is the number of decimal places between a major and a minor unit.
const MinorUnitExponent = 2

// DefaultCurrency is used for display when no currency is configured.
const DefaultCurrency = gomoney.INR

var (
	minorFactor = decimal.New(1, MinorUnitExponent)
	half        = decimal.New(5, -1)
)

// Amount is a count of minor currency units.
type Amount int64

// ToMinorUnits converts a major-unit value to minor units, rounding half-up.
func ToMinorUnits(major decimal.Decimal) Amount {
	return Amount(major.Mul(minorFactor).Add(half).Floor().IntPart())
}

// ToMajorUnits converts a minor-unit amount to an exact major-unit decimal.
func ToMajorUnits(a Amount) decimal.Decimal {
	return decimal.New(int64(a), -MinorUnitExponent)
}

// ParseMajor parses a decimal string such as "12.345" into minor units.
func ParseMajor(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return ToMinorUnits(d), nil
}

// Abs returns the absolute value of a.
func (a Amount) Abs() Amount {
	if a < 0 {
		return -a
	}
	return a
}

// Format renders a for display in the given ISO currency, e.g. "₹1,234.50".
// An empty currency falls back to DefaultCurrency.
func Format(a Amount, currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	return gomoney.New(int64(a), currency).Display()
}

// String renders the amount in major units without a currency symbol.
func (a Amount) String() string {
	return ToMajorUnits(a).StringFixed(MinorUnitExponent)
}
