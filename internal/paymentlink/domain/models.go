package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	bookingdomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/booking/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

const (
	ReasonNotFound    = "not_found"
	ReasonUsed        = "used"
	ReasonExpired     = "expired"
	ReasonBookingPaid = "booking_paid"
)

// PaymentLink is a single-use guest checkout entry. Only the token hash is stored.
type PaymentLink struct {
	ID             snowflake.ID  `json:"id" gorm:"primaryKey"`
	TokenHash      string        `json:"-" gorm:"type:text;not null;uniqueIndex"`
	BookingID      snowflake.ID  `json:"booking_id" gorm:"not null;index"`
	DiscountCodeID *snowflake.ID `json:"discount_code_id,omitempty"`
	ExpiresAt      time.Time     `json:"expires_at" gorm:"not null"`
	IsUsed         bool          `json:"is_used" gorm:"not null;default:false"`
	UsedAt         *time.Time    `json:"used_at,omitempty"`
	CreatedAt      time.Time     `json:"created_at" gorm:"not null"`
}

func (PaymentLink) TableName() string { return "payment_links" }

// Actionable reports whether the link can still be used at now.
func (l PaymentLink) Actionable(now time.Time) bool {
	return !l.IsUsed && now.Before(l.ExpiresAt)
}

func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// BookingState is the slice of a booking a link needs.
type BookingState struct {
	ID            snowflake.ID
	PaymentStatus bookingdomain.PaymentStatus
	ActiveQuoteID *snowflake.ID
}

func (b BookingState) Paid() bool {
	return b.PaymentStatus == bookingdomain.PaymentStatusPaid
}

type Generated struct {
	LinkID    snowflake.ID `json:"link_id"`
	Token     string       `json:"token"`
	URL       string       `json:"url"`
	ExpiresAt time.Time    `json:"expires_at"`
}

type Validation struct {
	Valid  bool      `json:"valid"`
	Reason string    `json:"reason,omitempty"`
	Data   *LinkData `json:"data,omitempty"`
}

type LinkData struct {
	LinkID             snowflake.ID     `json:"link_id"`
	BookingID          snowflake.ID     `json:"booking_id"`
	ExpiresAt          time.Time        `json:"expires_at"`
	QuoteID            *snowflake.ID    `json:"quote_id,omitempty"`
	Subtotal           *decimal.Decimal `json:"subtotal,omitempty"`
	DiscountAmount     *decimal.Decimal `json:"discount_amount,omitempty"`
	PriceAfterDiscount *decimal.Decimal `json:"price_after_discount,omitempty"`
	Total              *decimal.Decimal `json:"total,omitempty"`
	DiscountCode       string           `json:"discount_code,omitempty"`
}
