package service

import (
	"context"
	"strings"

	catalogdomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/catalog/domain"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/config"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/observability/metrics"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/quote/domain"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/pkg/money"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var maxMarginPercent = decimal.NewFromInt(1000)

type EngineParams struct {
	fx.In

	Log     *zap.Logger
	Catalog catalogdomain.Service
	Rules   *config.PricingRulesHolder
	Pricing config.PricingConfig
	Metrics *metrics.Metrics `optional:"true"`
}

type Engine struct {
	log     *zap.Logger
	catalog catalogdomain.Service
	rules   *config.PricingRulesHolder
	pricing config.PricingConfig
	metrics *metrics.Metrics
}

func NewEngine(p EngineParams) domain.Engine {
	return &Engine{
		log:     p.Log.Named("quote.engine"),
		catalog: p.Catalog,
		rules:   p.Rules,
		pricing: p.Pricing,
		metrics: p.Metrics,
	}
}

// DeterminePricingMode classifies free-text event types. The first rule with a
// keyword contained in the text wins; empty or unmatched text gets the default mode.
func DeterminePricingMode(rules config.PricingRules, eventType string) catalogdomain.PricingMode {
	fallback := catalogdomain.PricingMode(rules.DefaultMode)
	if !fallback.Valid() {
		fallback = catalogdomain.PricingModeGeneral
	}

	text := strings.ToLower(strings.TrimSpace(eventType))
	if text == "" {
		return fallback
	}
	for _, rule := range rules.Modes {
		mode := catalogdomain.PricingMode(rule.Mode)
		if !mode.Valid() {
			continue
		}
		for _, keyword := range rule.Keywords {
			if keyword != "" && strings.Contains(text, keyword) {
				return mode
			}
		}
	}
	return fallback
}

func (e *Engine) CalculateQuote(ctx context.Context, req domain.CalculateRequest) (*domain.Breakdown, error) {
	if req.ShootHours.IsNegative() {
		return nil, domain.ErrInvalidHours
	}
	marginPercent := e.pricing.DefaultMarginPercent
	if req.MarginPercent != nil {
		marginPercent = *req.MarginPercent
	}
	if marginPercent.IsNegative() || marginPercent.GreaterThan(maxMarginPercent) {
		return nil, domain.ErrInvalidMarginPercent
	}

	ids := make([]snowflake.ID, 0, len(req.Items))
	for _, sel := range req.Items {
		if sel.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		ids = append(ids, sel.CatalogItemID)
	}

	mode := DeterminePricingMode(e.rules.Get(), req.EventType)
	hours := req.ShootHours

	items, err := e.catalog.GetItems(ctx, ids)
	if err != nil {
		return nil, err
	}

	breakdown := &domain.Breakdown{
		PricingMode: mode,
		ShootHours:  hours,
		Lines:       make([]domain.BreakdownLine, 0, len(req.Items)),
	}

	totals := make([]decimal.Decimal, 0, len(req.Items))
	for _, sel := range req.Items {
		item, ok := items[sel.CatalogItemID]
		reason := ""
		switch {
		case !ok:
			reason = "missing"
		case !item.Active:
			reason = "inactive"
		case !item.Applicability.Allows(mode):
			reason = "wrong_mode"
		}
		if reason != "" {
			e.log.Warn("catalog item skipped during quote calculation",
				zap.String("catalog_item_id", sel.CatalogItemID.String()),
				zap.String("reason", reason),
				zap.String("pricing_mode", string(mode)),
			)
			e.metrics.RecordCatalogItemSkipped(ctx, reason)
			breakdown.SkippedItems = append(breakdown.SkippedItems, sel.CatalogItemID)
			continue
		}

		lineTotal := domain.LineTotal(item.Rate, item.RateType, sel.Quantity, hours)
		totals = append(totals, lineTotal)
		breakdown.Lines = append(breakdown.Lines, domain.BreakdownLine{
			CatalogItemID: item.ID,
			ItemName:      item.Name,
			RateType:      item.RateType,
			Quantity:      sel.Quantity,
			UnitPrice:     money.Round(item.Rate),
			LineTotal:     lineTotal,
		})
	}

	breakdown.Subtotal = money.Sum(totals...)

	breakdown.DiscountPercent = decimal.Zero
	if !req.SkipDiscount {
		pct, _, err := e.catalog.FindTier(ctx, mode, hours)
		if err != nil {
			return nil, err
		}
		breakdown.DiscountPercent = pct
	}
	breakdown.DiscountAmount = money.Percent(breakdown.Subtotal, breakdown.DiscountPercent)

	breakdown.MarginPercent = marginPercent
	if req.SkipMargin {
		breakdown.MarginPercent = decimal.Zero
	}
	amounts := domain.Recalculate(breakdown.Subtotal, breakdown.DiscountAmount, marginPercent, req.SkipMargin)
	breakdown.PriceAfterDiscount = amounts.PriceAfterDiscount
	breakdown.MarginAmount = amounts.MarginAmount
	breakdown.Total = amounts.Total

	e.metrics.RecordQuoteCalculated(ctx, string(mode))
	return breakdown, nil
}
