package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCentsRoundsHalfUp(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"0", 0},
		{"1.004", 100},
		{"1.005", 101},
		{"1.995", 200},
		{"39.999", 4000},
		{"0.30", 30},
	}
	for _, tc := range cases {
		got := Cents(decimal.RequireFromString(tc.in))
		assert.Equal(t, tc.want, got, "input %s", tc.in)
	}
}

func TestFromCentsRoundTrips(t *testing.T) {
	assert.Equal(t, int64(1750), Cents(FromCents(1750)))
	assert.True(t, FromCents(4000).Equal(decimal.RequireFromString("40.00")))
}

func TestPercentIsUnrounded(t *testing.T) {
	got := Percent(decimal.RequireFromString("19.99"), decimal.NewFromInt(15))
	assert.True(t, got.Equal(decimal.RequireFromString("2.9985")))
}

func TestClamp(t *testing.T) {
	assert.True(t, Clamp(decimal.RequireFromString("-0.01")).IsZero())
	assert.True(t, Clamp(decimal.RequireFromString("0.01")).Equal(decimal.RequireFromString("0.01")))
}

func TestMin(t *testing.T) {
	a := decimal.RequireFromString("2.00")
	b := decimal.RequireFromString("6.00")
	assert.True(t, Min(a, b).Equal(a))
	assert.True(t, Min(b, a).Equal(a))
}
