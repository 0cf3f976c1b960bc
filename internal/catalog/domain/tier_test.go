package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func ptr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func tier(minHours string, maxHours string, pct string) DiscountTier {
	t := DiscountTier{MinHours: dec(minHours), DiscountPercent: dec(pct)}
	if maxHours != "" {
		t.MaxHours = decimal.NewNullDecimal(dec(maxHours))
	}
	return t
}

func TestSelectTier(t *testing.T) {
	tiers := []DiscountTier{
		tier("0", "2", "0"),
		tier("2", "4", "15"),
		tier("4", "", "20"),
	}

	cases := []struct {
		hours string
		want  string
	}{
		{"0", "0"},
		{"1.5", "0"},
		{"2", "15"},
		{"3.99", "15"},
		{"4", "20"},
		{"40", "20"},
	}
	for _, tc := range cases {
		got := SelectTier(tiers, dec(tc.hours))
		require.NotNil(t, got, tc.hours)
		assert.True(t, got.DiscountPercent.Equal(dec(tc.want)), "hours %s", tc.hours)
	}

	assert.Nil(t, SelectTier(tiers[1:], dec("1")))
}

func TestSelectTierPrefersGreatestMin(t *testing.T) {
	overlapping := []DiscountTier{
		tier("0", "", "5"),
		tier("3", "", "12"),
	}
	got := SelectTier(overlapping, dec("6"))
	require.NotNil(t, got)
	assert.True(t, got.DiscountPercent.Equal(dec("12")))
}

func TestValidatePartition(t *testing.T) {
	valid := []TierInput{
		{MinHours: dec("4"), DiscountPercent: dec("20")},
		{MinHours: dec("0"), MaxHours: ptr("2"), DiscountPercent: dec("0")},
		{MinHours: dec("2"), MaxHours: ptr("4"), DiscountPercent: dec("15")},
	}
	require.NoError(t, ValidatePartition(valid))
	assert.True(t, valid[0].MinHours.IsZero())

	assert.ErrorIs(t, ValidatePartition(nil), ErrInvalidTiers)
	assert.ErrorIs(t, ValidatePartition([]TierInput{
		{MinHours: dec("1"), DiscountPercent: dec("0")},
	}), ErrTiersMustStartAtZero)
	assert.ErrorIs(t, ValidatePartition([]TierInput{
		{MinHours: dec("0"), MaxHours: ptr("2"), DiscountPercent: dec("0")},
		{MinHours: dec("3"), DiscountPercent: dec("10")},
	}), ErrTiersNotContiguous)
	assert.ErrorIs(t, ValidatePartition([]TierInput{
		{MinHours: dec("0"), MaxHours: ptr("2"), DiscountPercent: dec("0")},
	}), ErrMissingUnboundedTier)
	assert.ErrorIs(t, ValidatePartition([]TierInput{
		{MinHours: dec("0"), DiscountPercent: dec("0")},
		{MinHours: dec("2"), DiscountPercent: dec("10")},
	}), ErrTiersNotContiguous)
	assert.ErrorIs(t, ValidatePartition([]TierInput{
		{MinHours: dec("0"), DiscountPercent: dec("101")},
	}), ErrInvalidDiscountPercent)
}
