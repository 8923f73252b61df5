package models

import "time"

// PropertyTypeAllResidential is the aggregate row Redfin publishes for every
// ZIP code alongside the per-type breakdowns. It doubles as the lookup
// fallback when a specific property type has no data.
const PropertyTypeAllResidential = "All Residential"

// MarketRecord is one row of the Redfin ZIP-code market tracker: a single
// (ZIP, property type, period) observation. Pointer fields are nullable in
// the feed and in storage.
type MarketRecord struct {
	ID           int64   `json:"id"`
	ZipCode      string  `json:"zip_code"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	StateCode    *string `json:"state_code"`
	PropertyType string  `json:"property_type"`

	PeriodBegin time.Time `json:"period_begin"`
	PeriodEnd   time.Time `json:"period_end"`

	MedianSalePrice    *float64 `json:"median_sale_price"`
	MedianListPrice    *float64 `json:"median_list_price"`
	MedianPricePerSqFt *float64 `json:"median_ppsf"`

	// Fractional year-over-year change, e.g. 0.05 for +5%.
	MedianSalePriceYoY *float64 `json:"median_sale_price_yoy"`

	MedianDaysOnMarket *int `json:"median_dom"`
	HomesSold          *int `json:"homes_sold"`
	NewListings        *int `json:"new_listings"`
	Inventory          *int `json:"inventory"`

	MonthsOfSupply     *float64 `json:"months_of_supply"`
	AvgSaleToListRatio *float64 `json:"avg_sale_to_list"`
	PctSoldAboveList   *float64 `json:"sold_above_list"`
}

// MarketAnalysis is the derived, per-request view of a ZIP code's market.
// It is computed fresh on every read and never persisted.
type MarketAnalysis struct {
	Location           string    `json:"location"`
	MedianPrice        float64   `json:"median_price"`
	PriceChange        float64   `json:"price_change"`
	DaysOnMarket       int       `json:"days_on_market"`
	Inventory          int       `json:"inventory"`
	DemandScore        int       `json:"demand_score"`
	Recommendations    []string  `json:"recommendations"`
	KeyInsights        []string  `json:"key_insights"`
	CompetitiveFactors []string  `json:"competitive_factors"`
	DataFreshness      time.Time `json:"data_freshness"`
	DataSource         string    `json:"data_source"`
}

// IngestReport summarizes a single ingestion run for operational monitoring.
type IngestReport struct {
	LinesRead     int           `json:"linesRead"`
	RecordCount   int           `json:"recordCount"`
	ZipCount      int           `json:"zipCount"`
	FailedBatches int           `json:"failedBatches"`
	Duration      time.Duration `json:"-"`
}
