package service

import (
	"context"
	"testing"
	"time"

	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/catalog/domain"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/catalog/repository"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/clock"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupCatalog(t *testing.T) domain.Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Category{}, &domain.PricingItem{}, &domain.DiscountTier{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
}

func TestCreateCategoryAndItems(t *testing.T) {
	ctx := context.Background()
	svc := setupCatalog(t)

	category, err := svc.CreateCategory(ctx, domain.CreateCategoryRequest{Name: "Video Crew"})
	require.NoError(t, err)
	require.Equal(t, "video-crew", category.Slug)

	_, err = svc.CreateCategory(ctx, domain.CreateCategoryRequest{Name: "Video  Crew"})
	require.ErrorIs(t, err, domain.ErrDuplicateCategory)

	videographer, err := svc.CreateItem(ctx, domain.CreateItemRequest{
		CategoryID: category.ID,
		Name:       "Videographer",
		ServiceKey: "videographer",
		Rate:       decimal.RequireFromString("275"),
		RateType:   domain.RateTypePerHour,
	})
	require.NoError(t, err)
	require.Equal(t, domain.ApplicabilityBoth, videographer.Applicability)

	_, err = svc.CreateItem(ctx, domain.CreateItemRequest{
		CategoryID:    category.ID,
		Name:          "Gala Lighting",
		Rate:          decimal.RequireFromString("400"),
		RateType:      domain.RateTypeFlat,
		Applicability: domain.ApplicabilitySpecial,
	})
	require.NoError(t, err)

	general, err := svc.ListItems(ctx, domain.PricingModeGeneral)
	require.NoError(t, err)
	require.Len(t, general, 1)

	special, err := svc.ListItems(ctx, domain.PricingModeSpecial)
	require.NoError(t, err)
	require.Len(t, special, 2)

	byKey, err := svc.GetItemsByServiceKeys(ctx, []string{"Videographer", "gala-lighting", "missing"})
	require.NoError(t, err)
	require.Len(t, byKey, 2)
	require.True(t, byKey["videographer"].Rate.Equal(decimal.RequireFromString("275")))

	require.NoError(t, svc.DeactivateItem(ctx, videographer.ID))
	items, err := svc.GetItems(ctx, []snowflake.ID{videographer.ID, 12345})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.False(t, items[videographer.ID].Active)
}

func TestCreateItemValidation(t *testing.T) {
	ctx := context.Background()
	svc := setupCatalog(t)

	_, err := svc.CreateItem(ctx, domain.CreateItemRequest{Name: "x", Rate: decimal.NewFromInt(1), RateType: "weekly"})
	require.ErrorIs(t, err, domain.ErrInvalidRateType)

	_, err = svc.CreateItem(ctx, domain.CreateItemRequest{Name: "x", Rate: decimal.NewFromInt(-1), RateType: domain.RateTypeFlat})
	require.ErrorIs(t, err, domain.ErrInvalidRate)

	_, err = svc.CreateItem(ctx, domain.CreateItemRequest{Name: "x", Rate: decimal.NewFromInt(1), RateType: domain.RateTypeFlat})
	require.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

func TestReplaceTiersAndFindTier(t *testing.T) {
	ctx := context.Background()
	svc := setupCatalog(t)

	two := decimal.NewFromInt(2)
	four := decimal.NewFromInt(4)
	_, err := svc.ReplaceTiers(ctx, domain.PricingModeSpecial, []domain.TierInput{
		{MinHours: decimal.Zero, MaxHours: &two, DiscountPercent: decimal.Zero},
		{MinHours: two, MaxHours: &four, DiscountPercent: decimal.NewFromInt(15)},
		{MinHours: four, DiscountPercent: decimal.NewFromInt(20)},
	})
	require.NoError(t, err)

	pct, tier, err := svc.FindTier(ctx, domain.PricingModeSpecial, two)
	require.NoError(t, err)
	require.NotNil(t, tier)
	require.True(t, pct.Equal(decimal.NewFromInt(15)))

	pct, _, err = svc.FindTier(ctx, domain.PricingModeSpecial, decimal.NewFromInt(10))
	require.NoError(t, err)
	require.True(t, pct.Equal(decimal.NewFromInt(20)))

	pct, tier, err = svc.FindTier(ctx, domain.PricingModeGeneral, two)
	require.NoError(t, err)
	require.Nil(t, tier)
	require.True(t, pct.IsZero())

	_, err = svc.ReplaceTiers(ctx, domain.PricingModeSpecial, []domain.TierInput{
		{MinHours: decimal.Zero, DiscountPercent: decimal.NewFromInt(5)},
	})
	require.NoError(t, err)
	tiers, err := svc.ListTiers(ctx, domain.PricingModeSpecial)
	require.NoError(t, err)
	require.Len(t, tiers, 1)
	require.False(t, tiers[0].MaxHours.Valid)
}

func TestReplaceTiersRejectsGap(t *testing.T) {
	ctx := context.Background()
	svc := setupCatalog(t)

	two := decimal.NewFromInt(2)
	_, err := svc.ReplaceTiers(ctx, domain.PricingModeGeneral, []domain.TierInput{
		{MinHours: decimal.Zero, MaxHours: &two, DiscountPercent: decimal.Zero},
		{MinHours: decimal.NewFromInt(3), DiscountPercent: decimal.NewFromInt(10)},
	})
	require.ErrorIs(t, err, domain.ErrTiersNotContiguous)
}
