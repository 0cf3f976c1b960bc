package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, quote *Quote, lines []LineItem) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Quote, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Quote, error)
	ListLines(ctx context.Context, db *gorm.DB, quoteID snowflake.ID) ([]LineItem, error)
	ListByBooking(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) ([]Quote, error)
	// ExpireActiveForBooking moves every active quote of the booking to expired and returns how many changed.
	ExpireActiveForBooking(ctx context.Context, db *gorm.DB, bookingID snowflake.ID, now time.Time) (int64, error)
	// UpdatePricing persists discount-code results and status; line items are untouched.
	UpdatePricing(ctx context.Context, db *gorm.DB, quote *Quote) error
}
