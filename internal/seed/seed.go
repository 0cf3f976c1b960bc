package seed

import (
	"context"
	"errors"
	"time"

	catalogdomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/catalog/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type tierSeed struct {
	min     int64
	max     int64 // 0 means unbounded
	percent int64
}

// Default volume discounts per pricing mode. Each list partitions the hour axis.
var defaultTiers = map[catalogdomain.PricingMode][]tierSeed{
	catalogdomain.PricingModeGeneral: {
		{min: 0, max: 4, percent: 0},
		{min: 4, max: 8, percent: 10},
		{min: 8, percent: 15},
	},
	catalogdomain.PricingModeSpecial: {
		{min: 0, max: 2, percent: 0},
		{min: 2, max: 4, percent: 15},
		{min: 4, max: 8, percent: 20},
		{min: 8, percent: 25},
	},
}

// EnsureDefaults seeds discount tiers for modes that have none.
func EnsureDefaults(db *gorm.DB, node *snowflake.Node, log *zap.Logger) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if node == nil {
		return errors.New("seed id generator is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, mode := range []catalogdomain.PricingMode{catalogdomain.PricingModeGeneral, catalogdomain.PricingModeSpecial} {
			created, err := ensureTiersTx(ctx, tx, node, mode)
			if err != nil {
				return err
			}
			if created > 0 {
				log.Info("seeded default discount tiers",
					zap.String("pricing_mode", string(mode)),
					zap.Int("tiers", created),
				)
			}
		}
		return nil
	})
}

func ensureTiersTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, mode catalogdomain.PricingMode) (int, error) {
	var count int64
	if err := tx.WithContext(ctx).
		Model(&catalogdomain.DiscountTier{}).
		Where("pricing_mode = ?", mode).
		Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	seeds := defaultTiers[mode]
	for _, s := range seeds {
		tier := catalogdomain.DiscountTier{
			ID:              node.Generate(),
			PricingMode:     mode,
			MinHours:        decimal.NewFromInt(s.min),
			DiscountPercent: decimal.NewFromInt(s.percent),
			CreatedAt:       now,
		}
		if s.max > 0 {
			tier.MaxHours = decimal.NewNullDecimal(decimal.NewFromInt(s.max))
		}
		if err := tx.WithContext(ctx).Create(&tier).Error; err != nil {
			return 0, err
		}
	}
	return len(seeds), nil
}
