package service

import (
	"context"

	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/clock"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/config"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/quote/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Pricing config.PricingConfig
	Repo    domain.Repository
	Engine  domain.Engine
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	pricing config.PricingConfig
	repo    domain.Repository
	engine  domain.Engine
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("quote.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		pricing: p.Pricing,
		repo:    p.Repo,
		engine:  p.Engine,
	}
}

func (s *Service) CreateGuestQuote(ctx context.Context, req domain.CalculateRequest) (*domain.QuoteWithLines, error) {
	breakdown, err := s.engine.CalculateQuote(ctx, req)
	if err != nil {
		return nil, err
	}

	var out *domain.QuoteWithLines
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, err := s.Persist(ctx, tx, nil, domain.StatusDraft, breakdown)
		if err != nil {
			return err
		}
		out = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) GetQuote(ctx context.Context, id snowflake.ID) (*domain.QuoteWithLines, error) {
	quote, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := s.repo.ListLines(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	return &domain.QuoteWithLines{Quote: *quote, Lines: lines}, nil
}

// ListBookingQuotes returns every version for the booking, newest first.
func (s *Service) ListBookingQuotes(ctx context.Context, bookingID snowflake.ID) ([]domain.Quote, error) {
	return s.repo.ListByBooking(ctx, s.db, bookingID)
}

func (s *Service) Persist(ctx context.Context, tx *gorm.DB, bookingID *snowflake.ID, status domain.Status, breakdown *domain.Breakdown) (*domain.QuoteWithLines, error) {
	if !status.Active() {
		return nil, domain.ErrInvalidStatus
	}

	now := s.clock.Now()
	quote := domain.Quote{
		ID:                 s.genID.Generate(),
		BookingID:          bookingID,
		PricingMode:        breakdown.PricingMode,
		ShootHours:         breakdown.ShootHours,
		Subtotal:           breakdown.Subtotal,
		DiscountPercent:    breakdown.DiscountPercent,
		DiscountAmount:     breakdown.DiscountAmount,
		PriceAfterDiscount: breakdown.PriceAfterDiscount,
		MarginPercent:      breakdown.MarginPercent,
		MarginAmount:       breakdown.MarginAmount,
		Total:              breakdown.Total,
		Status:             status,
		ExpiresAt:          now.Add(s.pricing.QuoteValidity),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	lines := make([]domain.LineItem, 0, len(breakdown.Lines))
	for _, line := range breakdown.Lines {
		lines = append(lines, domain.LineItem{
			ID:            s.genID.Generate(),
			QuoteID:       quote.ID,
			CatalogItemID: line.CatalogItemID,
			ItemName:      line.ItemName,
			RateType:      line.RateType,
			Quantity:      line.Quantity,
			UnitPrice:     line.UnitPrice,
			LineTotal:     line.LineTotal,
			CreatedAt:     now,
		})
	}

	if err := s.repo.Insert(ctx, tx, &quote, lines); err != nil {
		return nil, err
	}
	return &domain.QuoteWithLines{Quote: quote, Lines: lines}, nil
}
