package domain

import (
	"context"
	"errors"
	"time"

	leaddomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/lead/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	GenerateUniqueCode(ctx context.Context) (string, error)
	CreateCode(ctx context.Context, req CreateCodeRequest) (*DiscountCode, error)
	GetCode(ctx context.Context, id snowflake.ID) (*DiscountCode, error)
	CheckCodeAvailability(ctx context.Context, code string, scope Scope) (Availability, error)
	ApplyDiscountCode(ctx context.Context, req ApplyRequest) (*ApplyResult, error)
	ListUsage(ctx context.Context, codeID snowflake.ID) ([]Usage, error)
	Deactivate(ctx context.Context, codeID snowflake.ID) (*DiscountCode, error)
}

type CreateCodeRequest struct {
	Code          string          `json:"code"`
	DiscountType  DiscountType    `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	UsageType     UsageType       `json:"usage_type"`
	MaxUses       *int            `json:"max_uses,omitempty"`
	LeadID        *snowflake.ID   `json:"lead_id,omitempty"`
	BookingID     *snowflake.ID   `json:"booking_id,omitempty"`
	ExpiresAt     *time.Time      `json:"expires_at,omitempty"`
	CreatedBy     string          `json:"created_by"`
}

type ApplyRequest struct {
	Code       string           `json:"code"`
	QuoteID    snowflake.ID     `json:"quote_id"`
	Scope      Scope            `json:"scope"`
	PayerEmail string           `json:"payer_email"`
	Actor      leaddomain.Actor `json:"-"`
}

type ApplyResult struct {
	DiscountCodeID snowflake.ID    `json:"discount_code_id"`
	QuoteID        snowflake.ID    `json:"quote_id"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalAmount    decimal.Decimal `json:"final_amount"`
}

var (
	ErrMalformedCode          = errors.New("malformed_code")
	ErrCodeNotFound           = errors.New("code_not_found")
	ErrCodeInactive           = errors.New("code_inactive")
	ErrCodeExpired            = errors.New("code_expired")
	ErrUsageExhausted         = errors.New("usage_exhausted")
	ErrScopeMismatch          = errors.New("scope_mismatch")
	ErrCodeSpaceExhausted     = errors.New("code_space_exhausted")
	ErrDuplicateCode          = errors.New("duplicate_code")
	ErrInvalidDiscountType    = errors.New("invalid_discount_type")
	ErrInvalidDiscountValue   = errors.New("invalid_discount_value")
	ErrInvalidUsageType       = errors.New("invalid_usage_type")
	ErrInvalidMaxUses         = errors.New("invalid_max_uses")
	ErrQuoteNotDiscountable   = errors.New("quote_not_discountable")
	ErrQuoteAlreadyDiscounted = errors.New("quote_already_discounted")
)

// ReasonError maps an availability reason to its sentinel.
func ReasonError(reason string) error {
	switch reason {
	case ReasonMalformed:
		return ErrMalformedCode
	case ReasonNotFound:
		return ErrCodeNotFound
	case ReasonInactive:
		return ErrCodeInactive
	case ReasonExpired:
		return ErrCodeExpired
	case ReasonUsageExhausted:
		return ErrUsageExhausted
	case ReasonScopeMismatch:
		return ErrScopeMismatch
	}
	return nil
}
