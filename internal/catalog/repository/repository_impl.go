package repository

import (
	"context"

	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/catalog/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

const itemColumns = `id, category_id, name, service_key, rate, rate_type, pricing_mode, active, sort_order, created_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertItem(ctx context.Context, db *gorm.DB, item *domain.PricingItem) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO pricing_items (`+itemColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.CategoryID,
		item.Name,
		item.ServiceKey,
		item.Rate,
		item.RateType,
		item.Applicability,
		item.Active,
		item.SortOrder,
		item.CreatedAt,
	).Error
}

func (r *repo) FindItemsByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]domain.PricingItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []domain.PricingItem
	err := db.WithContext(ctx).Raw(
		`SELECT `+itemColumns+` FROM pricing_items WHERE id IN ?`,
		ids,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindActiveItemsByServiceKeys(ctx context.Context, db *gorm.DB, keys []string) ([]domain.PricingItem, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	var items []domain.PricingItem
	err := db.WithContext(ctx).Raw(
		`SELECT `+itemColumns+` FROM pricing_items
		 WHERE service_key IN ? AND active = ?
		 ORDER BY created_at DESC, id DESC`,
		keys,
		true,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListActiveItems(ctx context.Context, db *gorm.DB) ([]domain.PricingItem, error) {
	var items []domain.PricingItem
	err := db.WithContext(ctx).Raw(
		`SELECT `+itemColumns+` FROM pricing_items WHERE active = ? ORDER BY sort_order ASC, id ASC`,
		true,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) SetItemActive(ctx context.Context, db *gorm.DB, id snowflake.ID, active bool) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE pricing_items SET active = ? WHERE id = ?`,
		active,
		id,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *repo) ListTiers(ctx context.Context, db *gorm.DB, mode domain.PricingMode) ([]domain.DiscountTier, error) {
	var tiers []domain.DiscountTier
	err := db.WithContext(ctx).Raw(
		`SELECT id, pricing_mode, min_hours, max_hours, discount_percent, created_at
		 FROM pricing_discount_tiers WHERE pricing_mode = ? ORDER BY min_hours ASC`,
		mode,
	).Scan(&tiers).Error
	if err != nil {
		return nil, err
	}
	return tiers, nil
}

func (r *repo) DeleteTiers(ctx context.Context, db *gorm.DB, mode domain.PricingMode) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM pricing_discount_tiers WHERE pricing_mode = ?`,
		mode,
	).Error
}

func (r *repo) InsertTier(ctx context.Context, db *gorm.DB, tier *domain.DiscountTier) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO pricing_discount_tiers (id, pricing_mode, min_hours, max_hours, discount_percent, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		tier.ID,
		tier.PricingMode,
		tier.MinHours,
		tier.MaxHours,
		tier.DiscountPercent,
		tier.CreatedAt,
	).Error
}
