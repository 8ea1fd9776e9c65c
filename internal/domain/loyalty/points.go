package loyalty

import (
	"github.com/shopspring/decimal"
)

// BonusTier awards a fixed bonus once a purchase reaches its spend threshold
type BonusTier struct {
	Threshold decimal.Decimal
	Bonus     int
}

// PointsCalculator computes loyalty points for a purchase amount: a base rate
// per whole dollar spent plus the bonus of the highest tier reached.
type PointsCalculator struct {
	PointsPerDollar int
	Tiers           []BonusTier // must be sorted by ascending threshold
}

// NewPointsCalculator creates a calculator with the store's standard tiers
// ($100, $250 and $500 spend bonuses).
func NewPointsCalculator(pointsPerDollar, bonus100, bonus250, bonus500 int) *PointsCalculator {
	return &PointsCalculator{
		PointsPerDollar: pointsPerDollar,
		Tiers: []BonusTier{
			{Threshold: decimal.NewFromInt(100), Bonus: bonus100},
			{Threshold: decimal.NewFromInt(250), Bonus: bonus250},
			{Threshold: decimal.NewFromInt(500), Bonus: bonus500},
		},
	}
}

// Calculate returns the points awarded for a purchase amount. Negative
// amounts earn nothing.
func (c *PointsCalculator) Calculate(amount decimal.Decimal) int {
	if amount.IsNegative() {
		return 0
	}

	base := int(amount.IntPart()) * c.PointsPerDollar

	bonus := 0
	for _, tier := range c.Tiers {
		if amount.GreaterThanOrEqual(tier.Threshold) {
			bonus = tier.Bonus
		}
	}

	return base + bonus
}
