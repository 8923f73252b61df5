package analysis

import (
	"math"

	"propwriter/server/internal/models"
)

// Sub-score normalization ceilings: a market at or beyond one of these is as
// slow or oversupplied as the score distinguishes.
const (
	maxDaysOnMarket   = 90.0
	maxInventory      = 200.0
	maxMonthsOfSupply = 12.0
)

// DemandScore condenses market tightness into an integer in [0,100] from
// four metrics: days on market, inventory, year-over-year price change, and
// months of supply. Each metric maps to a sub-score clamped to [0,100],
// blended 30/20/30/20. When months of supply is not reported, the remaining
// three blend 40/30/30 instead of treating the market as supply-constrained.
//
// Missing DOM and inventory read as 0 per the reader's defaulting rule,
// which yields maximal sub-scores: no recorded activity in a tiny market
// tends to coincide with extreme tightness.
func DemandScore(r *models.MarketRecord) int {
	dom := float64(intOrZero(r.MedianDaysOnMarket))
	inventory := float64(intOrZero(r.Inventory))
	priceChangePct := floatOrZero(r.MedianSalePriceYoY) * 100

	domScore := clamp(100 - dom/maxDaysOnMarket*100)
	inventoryScore := clamp(100 - inventory/maxInventory*100)
	priceScore := clamp(50 + priceChangePct*5)

	var score float64
	if r.MonthsOfSupply != nil {
		supplyScore := clamp(100 - *r.MonthsOfSupply/maxMonthsOfSupply*100)
		score = domScore*0.30 + inventoryScore*0.20 + priceScore*0.30 + supplyScore*0.20
	} else {
		score = domScore*0.40 + inventoryScore*0.30 + priceScore*0.30
	}

	return int(math.Round(score))
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
