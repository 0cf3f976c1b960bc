package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	GeneratePaymentLink(ctx context.Context, bookingID snowflake.ID, discountCodeID *snowflake.ID, expiryHours *int) (*Generated, error)
	ValidatePaymentLink(ctx context.Context, token string) (Validation, error)
	MarkUsed(ctx context.Context, token string) error
}

var (
	ErrBookingNotFound    = errors.New("booking_not_found")
	ErrBookingAlreadyPaid = errors.New("booking_already_paid")
	ErrInvalidExpiry      = errors.New("invalid_expiry_hours")
	ErrLinkNotFound       = errors.New("payment_link_not_found")
	ErrLinkAlreadyUsed    = errors.New("payment_link_already_used")
	ErrLinkExpired        = errors.New("payment_link_expired")
)
