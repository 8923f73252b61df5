package ingest

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"propwriter/server/internal/models"
)

var zipPattern = regexp.MustCompile(`\d{5}`)

// Feed column names, matched against the header row. Column order in the
// feed is not fixed.
const (
	colRegion          = "REGION"
	colCity            = "CITY"
	colState           = "STATE"
	colStateCode       = "STATE_CODE"
	colPropertyType    = "PROPERTY_TYPE"
	colPeriodBegin     = "PERIOD_BEGIN"
	colPeriodEnd       = "PERIOD_END"
	colMedianSalePrice = "MEDIAN_SALE_PRICE"
	colMedianListPrice = "MEDIAN_LIST_PRICE"
	colMedianPPSF      = "MEDIAN_PPSF"
	colSalePriceYoY    = "MEDIAN_SALE_PRICE_YOY"
	colMedianDOM       = "MEDIAN_DOM"
	colHomesSold       = "HOMES_SOLD"
	colNewListings     = "NEW_LISTINGS"
	colInventory       = "INVENTORY"
	colMonthsOfSupply  = "MONTHS_OF_SUPPLY"
	colAvgSaleToList   = "AVG_SALE_TO_LIST"
	colSoldAboveList   = "SOLD_ABOVE_LIST"
)

// ParseFeed reads the uncompressed tab-separated feed and returns one record
// per (ZIP, property type) key, keeping the row with the latest period end.
// Rows without an extractable ZIP code or without a numeric median sale
// price are skipped; these are markets with no recorded sales. The second
// return value is the number of data lines read.
func ParseFeed(r io.Reader) ([]*models.MarketRecord, int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, 0, err
		}
		return nil, 0, nil
	}
	header := splitFields(scanner.Text())
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}

	lines := 0
	latest := make(map[string]*models.MarketRecord)

	for scanner.Scan() {
		lines++
		fields := splitFields(scanner.Text())

		get := func(column string) string {
			idx, ok := columns[column]
			if !ok || idx >= len(fields) {
				return ""
			}
			return fields[idx]
		}

		zipCode := zipPattern.FindString(get(colRegion))
		if zipCode == "" {
			continue
		}

		// No parseable sale price means no sales in the period.
		medianSalePrice := parseFloat(get(colMedianSalePrice))
		if medianSalePrice == nil {
			continue
		}

		record := &models.MarketRecord{
			ZipCode:            zipCode,
			City:               nonEmpty(get(colCity)),
			State:              nonEmpty(get(colState)),
			StateCode:          nonEmpty(get(colStateCode)),
			PropertyType:       get(colPropertyType),
			PeriodBegin:        parseDate(get(colPeriodBegin)),
			PeriodEnd:          parseDate(get(colPeriodEnd)),
			MedianSalePrice:    medianSalePrice,
			MedianListPrice:    parseFloat(get(colMedianListPrice)),
			MedianPricePerSqFt: parseFloat(get(colMedianPPSF)),
			MedianSalePriceYoY: parseFloat(get(colSalePriceYoY)),
			MedianDaysOnMarket: parseInt(get(colMedianDOM)),
			HomesSold:          parseInt(get(colHomesSold)),
			NewListings:        parseInt(get(colNewListings)),
			Inventory:          parseInt(get(colInventory)),
			MonthsOfSupply:     parseFloat(get(colMonthsOfSupply)),
			AvgSaleToListRatio: parseFloat(get(colAvgSaleToList)),
			PctSoldAboveList:   parseFloat(get(colSoldAboveList)),
		}

		key := record.ZipCode + "|" + record.PropertyType
		if existing, ok := latest[key]; ok && !record.PeriodEnd.After(existing.PeriodEnd) {
			continue
		}
		latest[key] = record
	}
	if err := scanner.Err(); err != nil {
		return nil, lines, err
	}

	records := make([]*models.MarketRecord, 0, len(latest))
	for _, r := range latest {
		records = append(records, r)
	}
	return records, lines, nil
}

// splitFields splits a feed line on tabs and strips surrounding quotes from
// every field.
func splitFields(line string) []string {
	fields := strings.Split(line, "\t")
	for i, f := range fields {
		fields[i] = strings.Trim(f, `"`)
	}
	return fields
}

// parseFloat coerces permissively: anything that does not parse is nil, not
// an error, so a single malformed field never drops the row.
func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseInt(s string) *int {
	f := parseFloat(s)
	if f == nil {
		return nil
	}
	v := int(*f)
	return &v
}

func parseDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
