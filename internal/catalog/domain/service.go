package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error)
	ListCategories(ctx context.Context) ([]Category, error)

	CreateItem(ctx context.Context, req CreateItemRequest) (*PricingItem, error)
	ListItems(ctx context.Context, mode PricingMode) ([]PricingItem, error)
	GetItems(ctx context.Context, ids []snowflake.ID) (map[snowflake.ID]PricingItem, error)
	GetItemsByServiceKeys(ctx context.Context, keys []string) (map[string]PricingItem, error)
	DeactivateItem(ctx context.Context, id snowflake.ID) error

	ReplaceTiers(ctx context.Context, mode PricingMode, tiers []TierInput) ([]DiscountTier, error)
	ListTiers(ctx context.Context, mode PricingMode) ([]DiscountTier, error)
	FindTier(ctx context.Context, mode PricingMode, hours decimal.Decimal) (decimal.Decimal, *DiscountTier, error)
}

type CreateCategoryRequest struct {
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

type CreateItemRequest struct {
	CategoryID    snowflake.ID    `json:"category_id"`
	Name          string          `json:"name"`
	ServiceKey    string          `json:"service_key"`
	Rate          decimal.Decimal `json:"rate"`
	RateType      RateType        `json:"rate_type"`
	Applicability Applicability   `json:"pricing_mode"`
	SortOrder     int             `json:"sort_order"`
}

var (
	ErrInvalidName            = errors.New("invalid_name")
	ErrDuplicateCategory      = errors.New("duplicate_category")
	ErrCategoryNotFound       = errors.New("category_not_found")
	ErrInvalidRate            = errors.New("invalid_rate")
	ErrInvalidRateType        = errors.New("invalid_rate_type")
	ErrInvalidApplicability   = errors.New("invalid_applicability")
	ErrInvalidServiceKey      = errors.New("invalid_service_key")
	ErrInvalidPricingMode     = errors.New("invalid_pricing_mode")
	ErrItemNotFound           = errors.New("item_not_found")
	ErrInvalidTiers           = errors.New("invalid_tiers")
	ErrTiersMustStartAtZero   = errors.New("tiers_must_start_at_zero")
	ErrTiersNotContiguous     = errors.New("tiers_not_contiguous")
	ErrMissingUnboundedTier   = errors.New("missing_unbounded_tier")
	ErrInvalidTierRange       = errors.New("invalid_tier_range")
	ErrInvalidDiscountPercent = errors.New("invalid_discount_percent")
	ErrInvalidHours           = errors.New("invalid_hours")
)
