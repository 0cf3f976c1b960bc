package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertItem(ctx context.Context, db *gorm.DB, item *PricingItem) error
	FindItemsByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]PricingItem, error)
	FindActiveItemsByServiceKeys(ctx context.Context, db *gorm.DB, keys []string) ([]PricingItem, error)
	ListActiveItems(ctx context.Context, db *gorm.DB) ([]PricingItem, error)
	SetItemActive(ctx context.Context, db *gorm.DB, id snowflake.ID, active bool) error

	ListTiers(ctx context.Context, db *gorm.DB, mode PricingMode) ([]DiscountTier, error)
	DeleteTiers(ctx context.Context, db *gorm.DB, mode PricingMode) error
	InsertTier(ctx context.Context, db *gorm.DB, tier *DiscountTier) error
}
