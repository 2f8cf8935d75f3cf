package money

import "github.com/shopspring/decimal"

// All settlement arithmetic runs on shopspring decimals and is persisted as
// integer cents. Rounding is half-up to the currency minor unit and happens
// exactly once per computed quantity; summed totals are never re-rounded.

// FromCents converts integer cents into a decimal dollar amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Shift(-2)
}

// Cents converts a decimal dollar amount into integer cents, rounding half-up
// to the minor unit.
func Cents(amount decimal.Decimal) int64 {
	return RoundCents(amount).Shift(2).IntPart()
}

// RoundCents rounds a decimal amount to two decimal places, half-up.
func RoundCents(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// Percent returns rate% of amount, unrounded. Callers round once at the
// line level via RoundCents.
func Percent(amount decimal.Decimal, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(decimal.NewFromInt(100))
}

// Clamp returns zero when amount is negative, else amount unchanged.
func Clamp(amount decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}
