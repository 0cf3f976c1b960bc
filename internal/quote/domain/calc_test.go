package domain

import (
	"testing"

	catalogdomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/catalog/domain"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/pkg/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestLineTotalByRateType(t *testing.T) {
	hours := d("2.5")
	assert.Equal(t, "687.5", LineTotal(d("275"), catalogdomain.RateTypePerHour, 1, hours).String())
	assert.Equal(t, "1375", LineTotal(d("275"), catalogdomain.RateTypePerHour, 2, hours).String())
	assert.Equal(t, "300", LineTotal(d("150"), catalogdomain.RateTypeFlat, 2, hours).String())
	assert.Equal(t, "900", LineTotal(d("450"), catalogdomain.RateTypePerDay, 2, hours).String())
	assert.Equal(t, "37.5", LineTotal(d("12.5"), catalogdomain.RateTypePerUnit, 3, hours).String())
	assert.Equal(t, "33.34", LineTotal(d("33.335"), catalogdomain.RateTypeFlat, 1, hours).String())
}

func TestDiscountAndTotalProperties(t *testing.T) {
	subtotals := []string{"0", "0.01", "19.99", "550", "1234.57", "99999.99"}
	percents := []string{"0", "5", "12.5", "15", "33.33", "100"}
	margins := []string{"0", "25", "17.5"}

	for _, s := range subtotals {
		for _, p := range percents {
			for _, m := range margins {
				subtotal := d(s)
				discount := money.Percent(subtotal, d(p))
				assert.True(t, discount.Equal(subtotal.Mul(d(p)).Div(decimal.NewFromInt(100)).Round(2)))

				amounts := Recalculate(subtotal, discount, d(m), false)
				assert.True(t, amounts.PriceAfterDiscount.Equal(subtotal.Sub(discount)), "S=%s P=%s", s, p)
				assert.False(t, amounts.PriceAfterDiscount.IsNegative())
				assert.True(t, amounts.Total.Equal(amounts.PriceAfterDiscount.Add(amounts.MarginAmount)))
			}
		}
	}
}

func TestRecalculateDoesNotCompoundMargin(t *testing.T) {
	first := Recalculate(d("550"), d("82.50"), d("25"), false)
	again := Recalculate(d("550"), d("82.50"), d("25"), false)
	assert.True(t, first.Total.Equal(again.Total))
	assert.Equal(t, "584.38", first.Total.StringFixed(2))

	skipped := Recalculate(d("550"), d("82.50"), d("25"), true)
	assert.True(t, skipped.MarginAmount.IsZero())
	assert.Equal(t, "467.50", skipped.Total.StringFixed(2))
}

func TestRecalculateClampsOverDiscount(t *testing.T) {
	amounts := Recalculate(d("40"), d("50"), d("25"), false)
	assert.True(t, amounts.PriceAfterDiscount.IsZero())
	assert.True(t, amounts.Total.IsZero())
}
