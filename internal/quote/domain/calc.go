package domain

import (
	catalogdomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/catalog/domain"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/pkg/money"
	"github.com/shopspring/decimal"
)

// LineTotal prices one catalog line. Hourly items scale with shoot hours.
func LineTotal(rate decimal.Decimal, rateType catalogdomain.RateType, quantity int, hours decimal.Decimal) decimal.Decimal {
	qty := decimal.NewFromInt(int64(quantity))
	switch rateType {
	case catalogdomain.RateTypePerHour:
		return money.Round(rate.Mul(hours).Mul(qty))
	default:
		return money.Round(rate.Mul(qty))
	}
}

// Amounts is the tail of a quote calculation after the discount is known.
type Amounts struct {
	PriceAfterDiscount decimal.Decimal
	MarginAmount       decimal.Decimal
	Total              decimal.Decimal
}

// Recalculate derives the post-discount price, margin and total from a subtotal
// and the full discount already granted. Margin is applied once on the
// discounted price, so calling it again after a code is applied does not
// compound margin.
func Recalculate(subtotal, discount, marginPercent decimal.Decimal, skipMargin bool) Amounts {
	after := money.NonNegative(money.Round(subtotal).Sub(money.Round(discount)))
	margin := decimal.Zero
	if !skipMargin {
		margin = money.Percent(after, marginPercent)
	}
	return Amounts{
		PriceAfterDiscount: after,
		MarginAmount:       margin,
		Total:              money.Round(after.Add(margin)),
	}
}
