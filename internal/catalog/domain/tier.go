package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// SelectTier returns the qualifying tier with the greatest MinHours, or nil.
func SelectTier(tiers []DiscountTier, hours decimal.Decimal) *DiscountTier {
	var best *DiscountTier
	for i := range tiers {
		tier := tiers[i]
		if !tier.Contains(hours) {
			continue
		}
		if best == nil || tier.MinHours.GreaterThan(best.MinHours) {
			best = &tiers[i]
		}
	}
	return best
}

type TierInput struct {
	MinHours        decimal.Decimal  `json:"min_hours"`
	MaxHours        *decimal.Decimal `json:"max_hours"`
	DiscountPercent decimal.Decimal  `json:"discount_percent"`
}

// ValidatePartition checks that tiers cover every hour count from zero contiguously with exactly
// one unbounded top tier. Inputs are sorted by MinHours in place.
func ValidatePartition(tiers []TierInput) error {
	if len(tiers) == 0 {
		return ErrInvalidTiers
	}
	sort.SliceStable(tiers, func(i, j int) bool {
		return tiers[i].MinHours.LessThan(tiers[j].MinHours)
	})

	if !tiers[0].MinHours.IsZero() {
		return ErrTiersMustStartAtZero
	}

	for i, tier := range tiers {
		if tier.DiscountPercent.IsNegative() || tier.DiscountPercent.GreaterThan(hundred) {
			return ErrInvalidDiscountPercent
		}
		last := i == len(tiers)-1
		if tier.MaxHours == nil {
			if !last {
				return ErrTiersNotContiguous
			}
			continue
		}
		if !tier.MaxHours.GreaterThan(tier.MinHours) {
			return ErrInvalidTierRange
		}
		if last {
			return ErrMissingUnboundedTier
		}
		if !tier.MaxHours.Equal(tiers[i+1].MinHours) {
			return ErrTiersNotContiguous
		}
	}
	return nil
}
