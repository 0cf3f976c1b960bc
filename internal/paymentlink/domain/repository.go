package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, link *PaymentLink) error
	FindByTokenHash(ctx context.Context, db *gorm.DB, hash string) (*PaymentLink, error)
	// MarkUsed flips is_used once while the link is unexpired at now; it
	// returns false when the link was already used or has lapsed.
	MarkUsed(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) (bool, error)
	FindBookingState(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) (*BookingState, error)
}
