package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"propwriter/server/internal/models"
)

// ErrMissingDBPath is returned when the store is constructed without a
// database location. Callers must treat this as a configuration failure,
// not as an empty store.
var ErrMissingDBPath = errors.New("database path is not configured")

type Database struct {
	db *sql.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	if dbPath == "" {
		return nil, ErrMissingDBPath
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

const recordColumns = `
	zip_code, city, state, state_code, property_type,
	period_begin, period_end,
	median_sale_price, median_list_price, median_ppsf, median_sale_price_yoy,
	median_dom, homes_sold, new_listings, inventory,
	months_of_supply, avg_sale_to_list, sold_above_list
`

// GetLatestRecord returns the most recent record for a (zipCode,
// propertyType) pair, or nil when none exists. Fallback between property
// types is the caller's concern.
func (d *Database) GetLatestRecord(zipCode, propertyType string) (*models.MarketRecord, error) {
	query := `
        SELECT id, ` + recordColumns + `
        FROM market_records
        WHERE zip_code = ? AND property_type = ?
        ORDER BY period_end DESC
        LIMIT 1
    `

	row := d.db.QueryRow(query, zipCode, propertyType)

	var r models.MarketRecord
	var city, state, stateCode sql.NullString
	var periodBegin, periodEnd string
	var salePrice, listPrice, ppsf, yoy, supply, saleToList, aboveList sql.NullFloat64
	var dom, sold, newListings, inventory sql.NullInt64

	err := row.Scan(
		&r.ID,
		&r.ZipCode,
		&city,
		&state,
		&stateCode,
		&r.PropertyType,
		&periodBegin,
		&periodEnd,
		&salePrice,
		&listPrice,
		&ppsf,
		&yoy,
		&dom,
		&sold,
		&newListings,
		&inventory,
		&supply,
		&saleToList,
		&aboveList,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if city.Valid {
		r.City = &city.String
	}
	if state.Valid {
		r.State = &state.String
	}
	if stateCode.Valid {
		r.StateCode = &stateCode.String
	}

	if t, err := time.Parse("2006-01-02", periodBegin); err == nil {
		r.PeriodBegin = t
	}
	if t, err := time.Parse("2006-01-02", periodEnd); err == nil {
		r.PeriodEnd = t
	}

	r.MedianSalePrice = nullFloat(salePrice)
	r.MedianListPrice = nullFloat(listPrice)
	r.MedianPricePerSqFt = nullFloat(ppsf)
	r.MedianSalePriceYoY = nullFloat(yoy)
	r.MonthsOfSupply = nullFloat(supply)
	r.AvgSaleToListRatio = nullFloat(saleToList)
	r.PctSoldAboveList = nullFloat(aboveList)

	r.MedianDaysOnMarket = nullInt(dom)
	r.HomesSold = nullInt(sold)
	r.NewListings = nullInt(newListings)
	r.Inventory = nullInt(inventory)

	return &r, nil
}

// UpsertMarketRecords writes a batch of records in a single transaction,
// keyed on (zip_code, property_type, period_end) so re-ingesting the same
// feed is idempotent.
func (d *Database) UpsertMarketRecords(records []*models.MarketRecord) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO market_records (` + recordColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(zip_code, property_type, period_end) DO UPDATE SET
			city = excluded.city,
			state = excluded.state,
			state_code = excluded.state_code,
			period_begin = excluded.period_begin,
			median_sale_price = excluded.median_sale_price,
			median_list_price = excluded.median_list_price,
			median_ppsf = excluded.median_ppsf,
			median_sale_price_yoy = excluded.median_sale_price_yoy,
			median_dom = excluded.median_dom,
			homes_sold = excluded.homes_sold,
			new_listings = excluded.new_listings,
			inventory = excluded.inventory,
			months_of_supply = excluded.months_of_supply,
			avg_sale_to_list = excluded.avg_sale_to_list,
			sold_above_list = excluded.sold_above_list,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err = stmt.Exec(
			r.ZipCode,
			r.City,
			r.State,
			r.StateCode,
			r.PropertyType,
			r.PeriodBegin.Format("2006-01-02"),
			r.PeriodEnd.Format("2006-01-02"),
			r.MedianSalePrice,
			r.MedianListPrice,
			r.MedianPricePerSqFt,
			r.MedianSalePriceYoY,
			r.MedianDaysOnMarket,
			r.HomesSold,
			r.NewListings,
			r.Inventory,
			r.MonthsOfSupply,
			r.AvgSaleToListRatio,
			r.PctSoldAboveList,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert market record %s/%s: %w", r.ZipCode, r.PropertyType, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// CountRecords returns the total number of stored market records.
func (d *Database) CountRecords() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM market_records").Scan(&count)
	return count, err
}

// CountZipCodes returns the number of distinct ZIP codes covered.
func (d *Database) CountZipCodes() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(DISTINCT zip_code) FROM market_records").Scan(&count)
	return count, err
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) GetDB() *sql.DB {
	return d.db
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
