package seed

import (
	"testing"

	catalogdomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/catalog/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestDefaultTiersArePartitions(t *testing.T) {
	for mode, seeds := range defaultTiers {
		inputs := make([]catalogdomain.TierInput, 0, len(seeds))
		for _, s := range seeds {
			input := catalogdomain.TierInput{
				MinHours:        decimal.NewFromInt(s.min),
				DiscountPercent: decimal.NewFromInt(s.percent),
			}
			if s.max > 0 {
				upper := decimal.NewFromInt(s.max)
				input.MaxHours = &upper
			}
			inputs = append(inputs, input)
		}
		assert.NoError(t, catalogdomain.ValidatePartition(inputs), string(mode))
	}
}

func TestEnsureDefaultsIsIdempotent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&catalogdomain.DiscountTier{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	require.NoError(t, EnsureDefaults(db, node, zap.NewNop()))
	require.NoError(t, EnsureDefaults(db, node, zap.NewNop()))

	var count int64
	require.NoError(t, db.Model(&catalogdomain.DiscountTier{}).Count(&count).Error)
	assert.EqualValues(t, 7, count)

	var special []catalogdomain.DiscountTier
	require.NoError(t, db.Where("pricing_mode = ?", catalogdomain.PricingModeSpecial).Find(&special).Error)
	tier := catalogdomain.SelectTier(special, decimal.NewFromInt(2))
	require.NotNil(t, tier)
	assert.True(t, tier.DiscountPercent.Equal(decimal.NewFromInt(15)))
}
