package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v6"
)

// ErrMissingConfig marks a required setting that was not provided. Missing
// store or trigger credentials are fatal at startup, never defaulted.
var ErrMissingConfig = errors.New("missing required configuration")

type Config struct {
	// Port the HTTP server listens on
	Port string `env:"PORT" envDefault:"5250"`

	// Path to the sqlite database file
	DBPath string `env:"DB_PATH"`

	// Allowed CORS origins
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`

	// Ingestion configuration
	Ingest struct {
		// URL of the gzip-compressed ZIP-code market tracker feed
		FeedURL string `env:"MARKET_FEED_URL" envDefault:"https://redfin-public-data.s3.us-west-2.amazonaws.com/redfin_market_tracker/zip_code_market_tracker.tsv000.gz"`

		// Bearer token required by the ingestion trigger endpoint
		AuthToken string `env:"INGEST_AUTH_TOKEN"`

		// Wall-clock timeout for a full ingestion run (in seconds)
		TimeoutSeconds int `env:"INGEST_TIMEOUT_SECONDS" envDefault:"60"`

		// Number of records upserted per batch
		BatchSize int `env:"INGEST_BATCH_SIZE" envDefault:"500"`

		// Maximum number of retries for a failed batch
		MaxRetries int `env:"INGEST_MAX_RETRIES" envDefault:"2"`

		// Cron expression for the scheduled weekly run
		Schedule string `env:"INGEST_SCHEDULE" envDefault:"0 6 * * 1"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("%w: DB_PATH", ErrMissingConfig)
	}
	if cfg.Ingest.AuthToken == "" {
		return nil, fmt.Errorf("%w: INGEST_AUTH_TOKEN", ErrMissingConfig)
	}
	return cfg, nil
}
