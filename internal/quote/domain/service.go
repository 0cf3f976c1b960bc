package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Engine prices item selections against the catalog.
type Engine interface {
	CalculateQuote(ctx context.Context, req CalculateRequest) (*Breakdown, error)
}

type Service interface {
	CreateGuestQuote(ctx context.Context, req CalculateRequest) (*QuoteWithLines, error)
	GetQuote(ctx context.Context, id snowflake.ID) (*QuoteWithLines, error)
	ListBookingQuotes(ctx context.Context, bookingID snowflake.ID) ([]Quote, error)
	// Persist stores a breakdown as a new quote inside tx.
	Persist(ctx context.Context, tx *gorm.DB, bookingID *snowflake.ID, status Status, breakdown *Breakdown) (*QuoteWithLines, error)
}

var (
	ErrInvalidQuantity      = errors.New("invalid_quantity")
	ErrInvalidHours         = errors.New("invalid_shoot_hours")
	ErrInvalidMarginPercent = errors.New("invalid_margin_percent")
	ErrNotFound             = errors.New("quote_not_found")
	ErrInvalidStatus        = errors.New("invalid_quote_status")
)
