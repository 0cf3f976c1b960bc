package pdf

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type MarotoProvider struct{}

func New() Provider {
	return &MarotoProvider{}
}

func (p *MarotoProvider) RenderQuote(ctx context.Context, doc QuoteDocument) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, "Quote", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(22,
		col.New(6).Add(
			text.New("Quote number: "+doc.QuoteID, props.Text{Top: 0}),
			text.New("Date of issue: "+doc.IssueDate, props.Text{Top: 4}),
			text.New("Valid until: "+doc.ValidUntil, props.Text{Top: 8}),
		),
		col.New(6).Add(
			text.New("Prepared for", props.Text{Style: fontstyle.Bold}),
			text.New(doc.ClientName, props.Text{Top: 5}),
			text.New("Shoot hours: "+doc.ShootHours, props.Text{Top: 10}),
			text.New("Pricing: "+doc.PricingMode, props.Text{Top: 14}),
		),
	)

	m.AddRow(10,
		text.NewCol(6, "Service", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Rate", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, line := range doc.Lines {
		m.AddRow(8,
			text.NewCol(6, line.Description, props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%d", line.Qty), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, line.UnitPrice, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, line.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}

	totalRow(m, "Subtotal", doc.Subtotal, false)
	totalRow(m, doc.TierLabel, doc.TierDiscount, false)
	if doc.HasCodeSavings {
		totalRow(m, "Discount code", doc.CodeDiscount, false)
	}
	totalRow(m, "Service fee", doc.ServiceFee, false)
	totalRow(m, "Total", doc.Total, true)

	out, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return out.GetBytes(), nil
}

func totalRow(m core.Maroto, label, value string, bold bool) {
	style := fontstyle.Normal
	if bold {
		style = fontstyle.Bold
	}
	m.AddRow(8,
		col.New(7),
		text.NewCol(3, label, props.Text{Size: 9, Style: style}),
		text.NewCol(2, value, props.Text{Size: 9, Style: style, Align: align.Right}),
	)
}
