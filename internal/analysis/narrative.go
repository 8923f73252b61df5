package analysis

import (
	"fmt"
	"strconv"
	"strings"

	"propwriter/server/internal/models"
)

// KeyInsights evaluates the insight rules in fixed order: demand tier,
// inventory tier, price trend, days on market. Each rule appends at most one
// line.
func KeyInsights(r *models.MarketRecord, demandScore int) []string {
	insights := make([]string, 0, 4)

	switch {
	case demandScore >= 75:
		insights = append(insights, "High demand market that currently favors sellers")
	case demandScore >= 50:
		insights = append(insights, "Balanced market with steady buyer activity")
	default:
		insights = append(insights, "Buyer's market with lower competition among purchasers")
	}

	inventory := intOrZero(r.Inventory)
	switch {
	case inventory < 50:
		insights = append(insights, fmt.Sprintf("Very low inventory with only %d homes available", inventory))
	case inventory < 100:
		insights = append(insights, fmt.Sprintf("Moderate inventory with %d active listings", inventory))
	default:
		insights = append(insights, fmt.Sprintf("Higher inventory (%d homes) gives buyers more choice", inventory))
	}

	priceChangePct := floatOrZero(r.MedianSalePriceYoY) * 100
	switch {
	case priceChangePct > 5:
		insights = append(insights, fmt.Sprintf("Prices are rising strongly (+%.1f%% year-over-year)", priceChangePct))
	case priceChangePct < -5:
		insights = append(insights, fmt.Sprintf("Prices are declining (%.1f%% year-over-year)", priceChangePct))
	default:
		insights = append(insights, "Prices have been relatively stable year-over-year")
	}

	dom := intOrZero(r.MedianDaysOnMarket)
	if dom < 30 {
		insights = append(insights, "Homes are selling quickly, expect a competitive market")
	} else if dom > 60 {
		insights = append(insights, "Homes are taking longer to sell, leaving more negotiation room")
	}

	return insights
}

// Recommendations produces listing advice for the given record. The price
// band comes first when a median price exists, pacing advice depends on days
// on market, and two generic lines always close the list.
func Recommendations(r *models.MarketRecord, location string) []string {
	recs := make([]string, 0, 5)

	medianPrice := floatOrZero(r.MedianSalePrice)
	if medianPrice > 0 {
		recs = append(recs, fmt.Sprintf("Price in the %s to %s range to match recent sales",
			formatCurrency(medianPrice*0.95), formatCurrency(medianPrice*1.05)))
	}

	dom := intOrZero(r.MedianDaysOnMarket)
	if dom < 30 {
		recs = append(recs,
			"List soon - homes in this market are moving fast",
			"Price at or slightly above the median, demand supports it")
	} else if dom > 60 {
		recs = append(recs,
			"Price competitively to stand out in a slower market",
			"Invest in staging and professional photography")
	}

	recs = append(recs,
		"Highlight unique features that set the property apart",
		fmt.Sprintf("Mention the benefits of living in %s", location))

	return recs
}

// CompetitiveFactors lists one line per available metric, omitting any whose
// source field is missing or zero.
func CompetitiveFactors(r *models.MarketRecord) []string {
	factors := make([]string, 0, 6)

	if inventory := intOrZero(r.Inventory); inventory > 0 {
		factors = append(factors, fmt.Sprintf("%d homes currently on the market", inventory))
	}
	if sold := intOrZero(r.HomesSold); sold > 0 {
		factors = append(factors, fmt.Sprintf("%d homes sold in the most recent period", sold))
	}
	if listings := intOrZero(r.NewListings); listings > 0 {
		factors = append(factors, fmt.Sprintf("%d new listings entered the market", listings))
	}
	if dom := intOrZero(r.MedianDaysOnMarket); dom > 0 {
		factors = append(factors, fmt.Sprintf("Median days on market: %d", dom))
	}
	if aboveList := floatOrZero(r.PctSoldAboveList); aboveList > 0 {
		factors = append(factors, fmt.Sprintf("%.0f%% of homes sold above list price", aboveList*100))
	}
	priceChangePct := floatOrZero(r.MedianSalePriceYoY) * 100
	if priceChangePct > 0 {
		factors = append(factors, fmt.Sprintf("Prices are up %.1f%% from a year ago", priceChangePct))
	} else if priceChangePct < 0 {
		factors = append(factors, fmt.Sprintf("Prices are down %.1f%% from a year ago", -priceChangePct))
	}

	return factors
}

// formatCurrency renders a dollar amount with thousands separators and no
// cents, e.g. 617500 -> "$617,500".
func formatCurrency(v float64) string {
	s := strconv.FormatFloat(v, 'f', 0, 64)

	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}

	var b strings.Builder
	for i, digit := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}

	if negative {
		return "-$" + b.String()
	}
	return "$" + b.String()
}
