package domain

import (
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/pkg/money"
	"github.com/shopspring/decimal"
)

// CalculateDiscountAmount returns the rounded reduction a code grants on base.
// The result is never larger than base.
func CalculateDiscountAmount(base decimal.Decimal, code DiscountCode) decimal.Decimal {
	base = money.NonNegative(money.Round(base))
	var amount decimal.Decimal
	switch code.DiscountType {
	case DiscountTypePercentage:
		amount = money.Percent(base, code.DiscountValue)
	case DiscountTypeFixedAmount:
		amount = money.Round(code.DiscountValue)
	default:
		return decimal.Zero
	}
	return money.NonNegative(money.Min(amount, base))
}
