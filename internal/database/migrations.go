package database

import "fmt"

func (d *Database) RunMigrations() error {
	_, err := d.db.Exec(`
		CREATE TABLE IF NOT EXISTS market_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			zip_code TEXT NOT NULL,
			city TEXT,
			state TEXT,
			state_code TEXT,
			property_type TEXT NOT NULL,
			period_begin DATE,
			period_end DATE NOT NULL,
			median_sale_price REAL,
			median_list_price REAL,
			median_ppsf REAL,
			median_sale_price_yoy REAL,
			median_dom INTEGER,
			homes_sold INTEGER,
			new_listings INTEGER,
			inventory INTEGER,
			months_of_supply REAL,
			avg_sale_to_list REAL,
			sold_above_list REAL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (zip_code, property_type, period_end)
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create market_records table: %v", err)
	}

	// Covers the latest-record lookup: equality on zip and type, newest
	// period first.
	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_market_records_lookup
		ON market_records(zip_code, property_type, period_end DESC);
	`)
	if err != nil {
		return fmt.Errorf("failed to create market_records index: %v", err)
	}

	return nil
}
