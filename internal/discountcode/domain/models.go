package domain

import (
	"regexp"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountTypePercentage  DiscountType = "percentage"
	DiscountTypeFixedAmount DiscountType = "fixed_amount"
)

func (t DiscountType) Valid() bool {
	return t == DiscountTypePercentage || t == DiscountTypeFixedAmount
}

type UsageType string

const (
	UsageTypeOneTime  UsageType = "one_time"
	UsageTypeMultiUse UsageType = "multi_use"
)

func (t UsageType) Valid() bool {
	return t == UsageTypeOneTime || t == UsageTypeMultiUse
}

// Availability reasons returned to callers.
const (
	ReasonMalformed      = "malformed"
	ReasonNotFound       = "not_found"
	ReasonInactive       = "inactive"
	ReasonExpired        = "expired"
	ReasonUsageExhausted = "usage_exhausted"
	ReasonScopeMismatch  = "scope_mismatch"
)

var CodePattern = regexp.MustCompile(`^[A-Z0-9-]{4,32}$`)

type DiscountCode struct {
	ID            snowflake.ID    `json:"id" gorm:"primaryKey"`
	Code          string          `json:"code" gorm:"type:text;not null;uniqueIndex"`
	DiscountType  DiscountType    `json:"discount_type" gorm:"type:text;not null"`
	DiscountValue decimal.Decimal `json:"discount_value" gorm:"type:numeric(12,2);not null"`
	UsageType     UsageType       `json:"usage_type" gorm:"type:text;not null"`
	MaxUses       *int            `json:"max_uses,omitempty"`
	CurrentUses   int             `json:"current_uses" gorm:"not null;default:0"`
	LeadID        *snowflake.ID   `json:"lead_id,omitempty" gorm:"index"`
	BookingID     *snowflake.ID   `json:"booking_id,omitempty" gorm:"index"`
	ExpiresAt     *time.Time      `json:"expires_at,omitempty"`
	Active        bool            `json:"active" gorm:"not null;default:true"`
	CreatedBy     string          `json:"created_by" gorm:"type:text"`
	CreatedAt     time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt     time.Time       `json:"updated_at" gorm:"not null"`
}

func (DiscountCode) TableName() string { return "discount_codes" }

// Cap is the number of successful applications the code allows.
func (c DiscountCode) Cap() int {
	if c.UsageType == UsageTypeMultiUse && c.MaxUses != nil {
		return *c.MaxUses
	}
	return 1
}

// Usage is one successful application. Rows are never updated or deleted.
type Usage struct {
	ID             snowflake.ID    `json:"id" gorm:"primaryKey"`
	DiscountCodeID snowflake.ID    `json:"discount_code_id" gorm:"not null;index"`
	BookingID      *snowflake.ID   `json:"booking_id,omitempty" gorm:"index"`
	QuoteID        snowflake.ID    `json:"quote_id" gorm:"not null"`
	PayerEmail     string          `json:"payer_email" gorm:"type:text"`
	OriginalAmount decimal.Decimal `json:"original_amount" gorm:"type:numeric(12,2);not null"`
	DiscountAmount decimal.Decimal `json:"discount_amount" gorm:"type:numeric(12,2);not null"`
	FinalAmount    decimal.Decimal `json:"final_amount" gorm:"type:numeric(12,2);not null"`
	CreatedAt      time.Time       `json:"created_at" gorm:"not null"`
}

func (Usage) TableName() string { return "discount_code_usage" }

// Scope narrows where a code may be used. Nil fields are unconstrained.
type Scope struct {
	BookingID *snowflake.ID `json:"booking_id,omitempty"`
	LeadID    *snowflake.ID `json:"lead_id,omitempty"`
}

type Availability struct {
	Valid  bool          `json:"valid"`
	Reason string        `json:"reason,omitempty"`
	Code   *DiscountCode `json:"code,omitempty"`
}

// Evaluate checks a loaded code against scope at now. A nil code is not_found.
func Evaluate(code *DiscountCode, scope Scope, now time.Time) Availability {
	if code == nil {
		return Availability{Reason: ReasonNotFound}
	}
	switch {
	case !code.Active:
		return Availability{Reason: ReasonInactive, Code: code}
	case code.ExpiresAt != nil && !now.Before(*code.ExpiresAt):
		return Availability{Reason: ReasonExpired, Code: code}
	case code.CurrentUses >= code.Cap():
		return Availability{Reason: ReasonUsageExhausted, Code: code}
	case !scopeMatches(code.BookingID, scope.BookingID), !scopeMatches(code.LeadID, scope.LeadID):
		return Availability{Reason: ReasonScopeMismatch, Code: code}
	}
	return Availability{Valid: true, Code: code}
}

func scopeMatches(bound, requested *snowflake.ID) bool {
	if bound == nil {
		return true
	}
	return requested != nil && *requested == *bound
}
