package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type RateType string

const (
	RateTypeFlat    RateType = "flat"
	RateTypePerHour RateType = "per_hour"
	RateTypePerDay  RateType = "per_day"
	RateTypePerUnit RateType = "per_unit"
)

func (r RateType) Valid() bool {
	switch r {
	case RateTypeFlat, RateTypePerHour, RateTypePerDay, RateTypePerUnit:
		return true
	}
	return false
}

type PricingMode string

const (
	PricingModeGeneral PricingMode = "general"
	PricingModeSpecial PricingMode = "special"
)

func (m PricingMode) Valid() bool {
	return m == PricingModeGeneral || m == PricingModeSpecial
}

// Applicability says which pricing modes may use an item.
type Applicability string

const (
	ApplicabilityGeneral Applicability = "general"
	ApplicabilitySpecial Applicability = "special"
	ApplicabilityBoth    Applicability = "both"
)

func (a Applicability) Valid() bool {
	switch a {
	case ApplicabilityGeneral, ApplicabilitySpecial, ApplicabilityBoth:
		return true
	}
	return false
}

// Allows reports whether an item with this applicability can be quoted in mode.
func (a Applicability) Allows(mode PricingMode) bool {
	return a == ApplicabilityBoth || string(a) == string(mode)
}

type Category struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	Slug      string       `json:"slug" gorm:"type:text;not null;uniqueIndex"`
	SortOrder int          `json:"sort_order" gorm:"not null;default:0"`
	Active    bool         `json:"active" gorm:"not null;default:true"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null"`
}

func (Category) TableName() string { return "pricing_categories" }

// PricingItem is immutable once referenced by a quote; rate changes create a new item.
type PricingItem struct {
	ID            snowflake.ID    `json:"id" gorm:"primaryKey"`
	CategoryID    snowflake.ID    `json:"category_id" gorm:"not null;index"`
	Name          string          `json:"name" gorm:"type:text;not null"`
	ServiceKey    string          `json:"service_key" gorm:"type:text;not null;index"`
	Rate          decimal.Decimal `json:"rate" gorm:"type:numeric(12,2);not null"`
	RateType      RateType        `json:"rate_type" gorm:"type:text;not null"`
	Applicability Applicability   `json:"pricing_mode" gorm:"column:pricing_mode;type:text;not null"`
	Active        bool            `json:"active" gorm:"not null;default:true"`
	SortOrder     int             `json:"sort_order" gorm:"not null;default:0"`
	CreatedAt     time.Time       `json:"created_at" gorm:"not null"`
}

func (PricingItem) TableName() string { return "pricing_items" }

// DiscountTier grants DiscountPercent for shoots in [MinHours, MaxHours).
// A null MaxHours is unbounded.
type DiscountTier struct {
	ID              snowflake.ID        `json:"id" gorm:"primaryKey"`
	PricingMode     PricingMode         `json:"pricing_mode" gorm:"type:text;not null;index"`
	MinHours        decimal.Decimal     `json:"min_hours" gorm:"type:numeric(8,2);not null"`
	MaxHours        decimal.NullDecimal `json:"max_hours" gorm:"type:numeric(8,2)"`
	DiscountPercent decimal.Decimal     `json:"discount_percent" gorm:"type:numeric(5,2);not null"`
	CreatedAt       time.Time           `json:"created_at" gorm:"not null"`
}

func (DiscountTier) TableName() string { return "pricing_discount_tiers" }

// Contains reports whether hours falls inside the tier's half-open range.
func (t DiscountTier) Contains(hours decimal.Decimal) bool {
	if hours.LessThan(t.MinHours) {
		return false
	}
	return !t.MaxHours.Valid || hours.LessThan(t.MaxHours.Decimal)
}
