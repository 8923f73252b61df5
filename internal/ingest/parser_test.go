package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHeader = "PERIOD_BEGIN\tPERIOD_END\tREGION\tSTATE_CODE\tPROPERTY_TYPE\tMEDIAN_SALE_PRICE\tMEDIAN_SALE_PRICE_YOY\tMEDIAN_DOM\tHOMES_SOLD\tNEW_LISTINGS\tINVENTORY\tMONTHS_OF_SUPPLY\tAVG_SALE_TO_LIST\tSOLD_ABOVE_LIST"

func feedLine(periodBegin, periodEnd, region, stateCode, propertyType, price, yoy, dom, sold, listings, inventory, supply, saleToList, aboveList string) string {
	return strings.Join([]string{
		periodBegin, periodEnd, region, stateCode, propertyType,
		price, yoy, dom, sold, listings, inventory, supply, saleToList, aboveList,
	}, "\t")
}

func TestParseFeed_BasicRecord(t *testing.T) {
	feed := testHeader + "\n" +
		feedLine("2024-02-01", "2024-02-29", "Zip Code: 90210", "CA", "All Residential",
			"650000", "0.05", "21", "45", "50", "85", "2.5", "1.01", "0.35")

	records, lines, err := ParseFeed(strings.NewReader(feed))
	require.NoError(t, err)
	assert.Equal(t, 1, lines)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "90210", r.ZipCode)
	assert.Equal(t, "All Residential", r.PropertyType)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), r.PeriodEnd)
	require.NotNil(t, r.MedianSalePrice)
	assert.Equal(t, 650000.0, *r.MedianSalePrice)
	require.NotNil(t, r.MedianSalePriceYoY)
	assert.Equal(t, 0.05, *r.MedianSalePriceYoY)
	require.NotNil(t, r.MedianDaysOnMarket)
	assert.Equal(t, 21, *r.MedianDaysOnMarket)
	require.NotNil(t, r.Inventory)
	assert.Equal(t, 85, *r.Inventory)
	require.NotNil(t, r.StateCode)
	assert.Equal(t, "CA", *r.StateCode)
}

func TestParseFeed_StripsQuotes(t *testing.T) {
	feed := testHeader + "\n" +
		feedLine(`"2024-02-01"`, `"2024-02-29"`, `"Zip Code: 90210"`, `"CA"`, `"Condo/Co-op"`,
			`"500000"`, "", "", "", "", "", "", "", "")

	records, _, err := ParseFeed(strings.NewReader(feed))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "90210", records[0].ZipCode)
	assert.Equal(t, "Condo/Co-op", records[0].PropertyType)
}

func TestParseFeed_SkipsRowsWithoutZipOrPrice(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{
			name: "no five-digit run in region",
			row: feedLine("2024-02-01", "2024-02-29", "Zip Code: 123", "CA", "All Residential",
				"650000", "", "", "", "", "", "", "", ""),
		},
		{
			name: "empty median sale price",
			row: feedLine("2024-02-01", "2024-02-29", "Zip Code: 90210", "CA", "All Residential",
				"", "", "", "", "", "", "", "", ""),
		},
		{
			name: "non-numeric median sale price",
			row: feedLine("2024-02-01", "2024-02-29", "Zip Code: 90210", "CA", "All Residential",
				"n/a", "", "", "", "", "", "", "", ""),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, lines, err := ParseFeed(strings.NewReader(testHeader + "\n" + tt.row))
			require.NoError(t, err)
			assert.Equal(t, 1, lines)
			assert.Empty(t, records)
		})
	}
}

func TestParseFeed_MalformedNumericFieldNullsFieldOnly(t *testing.T) {
	feed := testHeader + "\n" +
		feedLine("2024-02-01", "2024-02-29", "Zip Code: 90210", "CA", "All Residential",
			"650000", "bogus", "21", "", "", "85", "", "", "")

	records, _, err := ParseFeed(strings.NewReader(feed))
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Nil(t, r.MedianSalePriceYoY)
	assert.Nil(t, r.HomesSold)
	require.NotNil(t, r.MedianDaysOnMarket)
	assert.Equal(t, 21, *r.MedianDaysOnMarket)
}

func TestParseFeed_KeepsLatestPeriodPerKey(t *testing.T) {
	older := feedLine("2024-01-01", "2024-01-31", "Zip Code: 90210", "CA", "Condo/Co-op",
		"500000", "", "", "", "", "", "", "", "")
	newer := feedLine("2024-02-01", "2024-02-29", "Zip Code: 90210", "CA", "Condo/Co-op",
		"510000", "", "", "", "", "", "", "", "")

	for _, order := range [][]string{{older, newer}, {newer, older}} {
		feed := testHeader + "\n" + strings.Join(order, "\n")

		records, lines, err := ParseFeed(strings.NewReader(feed))
		require.NoError(t, err)
		assert.Equal(t, 2, lines)
		require.Len(t, records, 1)

		r := records[0]
		assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), r.PeriodEnd)
		require.NotNil(t, r.MedianSalePrice)
		assert.Equal(t, 510000.0, *r.MedianSalePrice)
	}
}

func TestParseFeed_SeparateKeysPerPropertyType(t *testing.T) {
	feed := testHeader + "\n" +
		feedLine("2024-02-01", "2024-02-29", "Zip Code: 90210", "CA", "All Residential",
			"650000", "", "", "", "", "", "", "", "") + "\n" +
		feedLine("2024-02-01", "2024-02-29", "Zip Code: 90210", "CA", "Condo/Co-op",
			"500000", "", "", "", "", "", "", "", "")

	records, _, err := ParseFeed(strings.NewReader(feed))
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestParseFeed_ColumnOrderIndependent(t *testing.T) {
	feed := "MEDIAN_SALE_PRICE\tREGION\tPROPERTY_TYPE\tPERIOD_END\n" +
		"650000\tZip Code: 90210\tAll Residential\t2024-02-29"

	records, _, err := ParseFeed(strings.NewReader(feed))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "90210", records[0].ZipCode)
	require.NotNil(t, records[0].MedianSalePrice)
	assert.Equal(t, 650000.0, *records[0].MedianSalePrice)
}

func TestParseFeed_EmptyInput(t *testing.T) {
	records, lines, err := ParseFeed(strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, lines)
	assert.Empty(t, records)
}
