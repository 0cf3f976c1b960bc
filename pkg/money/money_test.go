package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRoundHalfAwayFromZero(t *testing.T) {
	assert.Equal(t, "116.88", Round(d("116.875")).StringFixed(2))
	assert.Equal(t, "0.01", Round(d("0.005")).StringFixed(2))
	assert.Equal(t, "-0.01", Round(d("-0.005")).StringFixed(2))
	assert.Equal(t, "10.00", Round(d("9.999")).StringFixed(2))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "82.50", Percent(d("550"), d("15")).StringFixed(2))
	assert.Equal(t, "116.88", Percent(d("467.50"), d("25")).StringFixed(2))
	assert.Equal(t, "0.00", Percent(d("100"), decimal.Zero).StringFixed(2))
}

func TestSumRoundsEachStep(t *testing.T) {
	// each addend rounds up to 0.01 before being summed
	got := Sum(d("0.005"), d("0.005"), d("0.005"))
	assert.Equal(t, "0.03", got.StringFixed(2))
}

func TestCentsRoundTrip(t *testing.T) {
	assert.Equal(t, int64(58438), Cents(d("584.38")))
	assert.Equal(t, "584.38", FromCents(58438).StringFixed(2))
	assert.Equal(t, int64(1), Cents(d("0.005")))
}

func TestMinAndNonNegative(t *testing.T) {
	assert.Equal(t, "50", Min(d("50"), d("80")).String())
	assert.True(t, NonNegative(d("-3")).IsZero())
	assert.Equal(t, "3", NonNegative(d("3")).String())
}
