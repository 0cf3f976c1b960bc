package repository

import (
	"context"
	"time"

	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/paymentlink/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, link *domain.PaymentLink) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO payment_links (
			id, token_hash, booking_id, discount_code_id, expires_at, is_used, used_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		link.ID,
		link.TokenHash,
		link.BookingID,
		link.DiscountCodeID,
		link.ExpiresAt,
		link.IsUsed,
		link.UsedAt,
		link.CreatedAt,
	).Error
}

func (r *repo) FindByTokenHash(ctx context.Context, db *gorm.DB, hash string) (*domain.PaymentLink, error) {
	var link domain.PaymentLink
	err := db.WithContext(ctx).Raw(
		`SELECT id, token_hash, booking_id, discount_code_id, expires_at, is_used, used_at, created_at
		 FROM payment_links WHERE token_hash = ?`,
		hash,
	).Scan(&link).Error
	if err != nil {
		return nil, err
	}
	if link.ID == 0 {
		return nil, nil
	}
	return &link, nil
}

func (r *repo) MarkUsed(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE payment_links SET is_used = ?, used_at = ? WHERE id = ? AND is_used = ? AND expires_at > ?`,
		true, now, id, false, now,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repo) FindBookingState(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) (*domain.BookingState, error) {
	var state domain.BookingState
	err := db.WithContext(ctx).Raw(
		`SELECT id, payment_status, active_quote_id FROM bookings WHERE id = ?`,
		bookingID,
	).Scan(&state).Error
	if err != nil {
		return nil, err
	}
	if state.ID == 0 {
		return nil, nil
	}
	return &state, nil
}
