package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_PATH", "/tmp/market.db")
	t.Setenv("INGEST_AUTH_TOKEN", "secret")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "5250", cfg.Port)
	assert.Equal(t, "/tmp/market.db", cfg.DBPath)
	assert.Equal(t, 60, cfg.Ingest.TimeoutSeconds)
	assert.Equal(t, 500, cfg.Ingest.BatchSize)
	assert.Equal(t, "0 6 * * 1", cfg.Ingest.Schedule)
	assert.Contains(t, cfg.Ingest.FeedURL, "zip_code_market_tracker")
}

func TestLoadConfig_MissingDBPath(t *testing.T) {
	t.Setenv("DB_PATH", "")
	t.Setenv("INGEST_AUTH_TOKEN", "secret")

	cfg, err := LoadConfig()
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrMissingConfig)
	assert.Contains(t, err.Error(), "DB_PATH")
}

func TestLoadConfig_MissingAuthToken(t *testing.T) {
	t.Setenv("DB_PATH", "/tmp/market.db")
	t.Setenv("INGEST_AUTH_TOKEN", "")

	cfg, err := LoadConfig()
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrMissingConfig)
}

func TestLoadConfig_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("INGEST_BATCH_SIZE", "100")
	t.Setenv("INGEST_TIMEOUT_SECONDS", "120")
	t.Setenv("CORS_ORIGINS", "https://app.example.com,https://staging.example.com")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.Ingest.BatchSize)
	assert.Equal(t, 120, cfg.Ingest.TimeoutSeconds)
	assert.Equal(t, []string{"https://app.example.com", "https://staging.example.com"}, cfg.CORSOrigins)
}
