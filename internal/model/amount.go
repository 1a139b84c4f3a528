package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// minorUnitExp is the exponent of the minor currency unit (cents).
const minorUnitExp = -2

// Amount is a signed sum of money in minor currency units.
// Positive values are inflows, negative values outflows.
type Amount int64

// ParseAmount parses a decimal string such as "-12.50" into minor units.
// More than two fractional digits are rejected rather than rounded.
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return AmountFromDecimal(d)
}

// AmountFromDecimal converts a major-unit decimal to minor units exactly.
func AmountFromDecimal(d decimal.Decimal) (Amount, error) {
	minor := d.Shift(-minorUnitExp)
	if !minor.Equal(minor.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has more than %d decimal places", d.String(), -minorUnitExp)
	}
	return Amount(minor.IntPart()), nil
}

// Decimal returns the amount in major units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), minorUnitExp)
}

// String formats the amount with two decimals, e.g. "-17.00".
func (a Amount) String() string {
	return a.Decimal().StringFixed(-minorUnitExp)
}

// Sum adds up amounts.
func Sum(amounts ...Amount) Amount {
	var total Amount
	for _, a := range amounts {
		total += a
	}
	return total
}
