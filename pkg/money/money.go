// Package money holds the rounding rules shared by every monetary calculation.
// Amounts are decimal.Decimal in the single operating currency and are rounded
// to cents after every aggregation step.
package money

import "github.com/shopspring/decimal"

const Places = 2

var hundred = decimal.NewFromInt(100)

// Round rounds to cents, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Percent returns Round(amount * pct / 100).
func Percent(amount, pct decimal.Decimal) decimal.Decimal {
	return Round(amount.Mul(pct).Div(hundred))
}

// Sum adds the rounded values and rounds the result.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(Round(v))
	}
	return Round(total)
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// NonNegative clamps d at zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Cents converts an amount to integer minor units for processors that bill in cents.
func Cents(d decimal.Decimal) int64 {
	return Round(d).Mul(hundred).IntPart()
}

// FromCents converts integer minor units back to an amount.
func FromCents(c int64) decimal.Decimal {
	return decimal.New(c, -Places)
}
