package domain

import (
	"time"

	catalogdomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/catalog/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

// ActiveStatuses are the states a booking's current quote may be in.
var ActiveStatuses = []Status{StatusDraft, StatusPending, StatusConfirmed}

func (s Status) Active() bool {
	for _, candidate := range ActiveStatuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// Quote is a priced snapshot. Superseded quotes are expired, never deleted.
type Quote struct {
	ID                 snowflake.ID              `json:"id" gorm:"primaryKey"`
	BookingID          *snowflake.ID             `json:"booking_id,omitempty" gorm:"index"`
	PricingMode        catalogdomain.PricingMode `json:"pricing_mode" gorm:"type:text;not null"`
	ShootHours         decimal.Decimal           `json:"shoot_hours" gorm:"type:numeric(8,2);not null"`
	Subtotal           decimal.Decimal           `json:"subtotal" gorm:"type:numeric(12,2);not null"`
	DiscountPercent    decimal.Decimal           `json:"discount_percent" gorm:"type:numeric(5,2);not null"`
	DiscountAmount     decimal.Decimal           `json:"discount_amount" gorm:"type:numeric(12,2);not null"`
	DiscountCodeID     *snowflake.ID             `json:"discount_code_id,omitempty"`
	CodeDiscountAmount decimal.Decimal           `json:"code_discount_amount" gorm:"type:numeric(12,2);not null;default:0"`
	PriceAfterDiscount decimal.Decimal           `json:"price_after_discount" gorm:"type:numeric(12,2);not null"`
	MarginPercent      decimal.Decimal           `json:"margin_percent" gorm:"type:numeric(7,2);not null"`
	MarginAmount       decimal.Decimal           `json:"margin_amount" gorm:"type:numeric(12,2);not null"`
	Total              decimal.Decimal           `json:"total" gorm:"type:numeric(12,2);not null"`
	Status             Status                    `json:"status" gorm:"type:text;not null;index"`
	ExpiresAt          time.Time                 `json:"expires_at" gorm:"not null"`
	CreatedAt          time.Time                 `json:"created_at" gorm:"not null"`
	UpdatedAt          time.Time                 `json:"updated_at" gorm:"not null"`
}

func (Quote) TableName() string { return "quotes" }

// LineItem snapshots the catalog rate at quote time and is never updated.
type LineItem struct {
	ID            snowflake.ID           `json:"id" gorm:"primaryKey"`
	QuoteID       snowflake.ID           `json:"quote_id" gorm:"not null;index"`
	CatalogItemID snowflake.ID           `json:"catalog_item_id" gorm:"not null"`
	ItemName      string                 `json:"item_name" gorm:"type:text;not null"`
	RateType      catalogdomain.RateType `json:"rate_type" gorm:"type:text;not null"`
	Quantity      int                    `json:"quantity" gorm:"not null"`
	UnitPrice     decimal.Decimal        `json:"unit_price" gorm:"type:numeric(12,2);not null"`
	LineTotal     decimal.Decimal        `json:"line_total" gorm:"type:numeric(12,2);not null"`
	CreatedAt     time.Time              `json:"created_at" gorm:"not null"`
}

func (LineItem) TableName() string { return "quote_line_items" }

type ItemSelection struct {
	CatalogItemID snowflake.ID `json:"catalog_item_id"`
	Quantity      int          `json:"quantity"`
}

type CalculateRequest struct {
	Items         []ItemSelection  `json:"items"`
	ShootHours    decimal.Decimal  `json:"shoot_hours"`
	EventType     string           `json:"event_type"`
	MarginPercent *decimal.Decimal `json:"margin_percent,omitempty"`
	SkipDiscount  bool             `json:"skip_discount"`
	SkipMargin    bool             `json:"skip_margin"`
}

type BreakdownLine struct {
	CatalogItemID snowflake.ID           `json:"catalog_item_id"`
	ItemName      string                 `json:"item_name"`
	RateType      catalogdomain.RateType `json:"rate_type"`
	Quantity      int                    `json:"quantity"`
	UnitPrice     decimal.Decimal        `json:"unit_price"`
	LineTotal     decimal.Decimal        `json:"line_total"`
}

type Breakdown struct {
	PricingMode        catalogdomain.PricingMode `json:"pricing_mode"`
	ShootHours         decimal.Decimal           `json:"shoot_hours"`
	Lines              []BreakdownLine           `json:"lines"`
	SkippedItems       []snowflake.ID            `json:"skipped_items,omitempty"`
	Subtotal           decimal.Decimal           `json:"subtotal"`
	DiscountPercent    decimal.Decimal           `json:"discount_percent"`
	DiscountAmount     decimal.Decimal           `json:"discount_amount"`
	PriceAfterDiscount decimal.Decimal           `json:"price_after_discount"`
	MarginPercent      decimal.Decimal           `json:"margin_percent"`
	MarginAmount       decimal.Decimal           `json:"margin_amount"`
	Total              decimal.Decimal           `json:"total"`
}

type QuoteWithLines struct {
	Quote Quote      `json:"quote"`
	Lines []LineItem `json:"lines"`
}
