package pdf

import (
	"context"
	"fmt"
	"time"

	quotedomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/quote/domain"
	"github.com/shopspring/decimal"
)

// Provider renders customer-facing documents.
type Provider interface {
	RenderQuote(ctx context.Context, doc QuoteDocument) ([]byte, error)
}

type QuoteDocument struct {
	QuoteID     string
	ClientName  string
	IssueDate   string
	ValidUntil  string
	PricingMode string
	ShootHours  string

	Lines []QuoteLine

	Subtotal       string
	TierDiscount   string
	TierLabel      string
	CodeDiscount   string
	ServiceFee     string
	Total          string
	HasCodeSavings bool
}

type QuoteLine struct {
	Description string
	Qty         int
	UnitPrice   string
	Amount      string
}

// NewQuoteDocument formats a stored quote for rendering.
func NewQuoteDocument(q quotedomain.QuoteWithLines, clientName string) QuoteDocument {
	doc := QuoteDocument{
		QuoteID:        q.Quote.ID.String(),
		ClientName:     clientName,
		IssueDate:      q.Quote.CreatedAt.Format(time.DateOnly),
		ValidUntil:     q.Quote.ExpiresAt.Format(time.DateOnly),
		PricingMode:    string(q.Quote.PricingMode),
		ShootHours:     q.Quote.ShootHours.String(),
		Subtotal:       usd(q.Quote.Subtotal),
		TierDiscount:   usd(q.Quote.DiscountAmount.Neg()),
		TierLabel:      fmt.Sprintf("Volume discount (%s%%)", q.Quote.DiscountPercent.String()),
		CodeDiscount:   usd(q.Quote.CodeDiscountAmount.Neg()),
		ServiceFee:     usd(q.Quote.MarginAmount),
		Total:          usd(q.Quote.Total),
		HasCodeSavings: q.Quote.CodeDiscountAmount.IsPositive(),
	}
	if doc.ClientName == "" {
		doc.ClientName = "Guest"
	}
	for _, line := range q.Lines {
		doc.Lines = append(doc.Lines, QuoteLine{
			Description: line.ItemName,
			Qty:         line.Quantity,
			UnitPrice:   usd(line.UnitPrice),
			Amount:      usd(line.LineTotal),
		})
	}
	return doc
}

func usd(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}
