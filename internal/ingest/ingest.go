package ingest

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"propwriter/server/internal/database"
	"propwriter/server/internal/models"
	"propwriter/server/internal/observability"
)

// Ingester downloads the market tracker feed and refreshes the store. One
// run is a single sequential pass: download, decompress, parse, upsert in
// fixed-size batches.
type Ingester struct {
	db         *database.Database
	client     *http.Client
	feedURL    string
	batchSize  int
	maxRetries int
	logger     *logrus.Logger
	metrics    *observability.Metrics
}

func NewIngester(db *database.Database, feedURL string, batchSize int, maxRetries int, logger *logrus.Logger, metrics *observability.Metrics) *Ingester {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &Ingester{
		db:         db,
		client:     &http.Client{},
		feedURL:    feedURL,
		batchSize:  batchSize,
		maxRetries: maxRetries,
		logger:     logger,
		metrics:    metrics,
	}
}

// Run downloads the gzip-compressed feed and ingests it. Download or
// decompression failures abort the run; per-batch store failures do not.
func (i *Ingester) Run(ctx context.Context) (*models.IngestReport, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, i.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed request: %w", err)
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download market feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market feed returned status %d", resp.StatusCode)
	}

	return i.Ingest(resp.Body)
}

// Ingest processes a gzip-compressed TSV feed stream. It is the plain entry
// point used by the HTTP trigger, the scheduler, and tests alike.
func (i *Ingester) Ingest(feed io.Reader) (*models.IngestReport, error) {
	start := time.Now()

	gz, err := gzip.NewReader(feed)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress market feed: %w", err)
	}
	defer gz.Close()

	records, lines, err := ParseFeed(gz)
	if err != nil {
		return nil, fmt.Errorf("failed to parse market feed: %w", err)
	}

	i.logger.WithFields(logrus.Fields{
		"lines_read": lines,
		"records":    len(records),
	}).Info("Parsed market feed")

	failedBatches := i.persistBatches(records)

	zips := make(map[string]struct{})
	for _, r := range records {
		zips[r.ZipCode] = struct{}{}
	}

	report := &models.IngestReport{
		LinesRead:     lines,
		RecordCount:   len(records),
		ZipCount:      len(zips),
		FailedBatches: failedBatches,
		Duration:      time.Since(start),
	}

	if i.metrics != nil {
		i.metrics.LinesRead.Add(float64(lines))
		i.metrics.RecordsKept.Add(float64(len(records)))
		i.metrics.FailedBatches.Add(float64(failedBatches))
		i.metrics.IngestDuration.Observe(report.Duration.Seconds())
	}

	i.logger.WithFields(logrus.Fields{
		"records":        report.RecordCount,
		"zip_codes":      report.ZipCount,
		"failed_batches": report.FailedBatches,
		"duration":       report.Duration.String(),
	}).Info("Market feed ingestion completed")

	return report, nil
}

// persistBatches writes records sequentially in fixed-size batches. A failed
// batch is retried, then logged and counted; it never aborts the loop.
func (i *Ingester) persistBatches(records []*models.MarketRecord) int {
	failed := 0
	for offset := 0; offset < len(records); offset += i.batchSize {
		end := offset + i.batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[offset:end]

		if err := i.persistBatch(batch); err != nil {
			i.logger.WithError(err).WithFields(logrus.Fields{
				"offset":     offset,
				"batch_size": len(batch),
			}).Error("Failed to persist market record batch")
			failed++
		}
	}
	return failed
}

func (i *Ingester) persistBatch(batch []*models.MarketRecord) error {
	var err error
	for attempt := 0; attempt <= i.maxRetries; attempt++ {
		if attempt > 0 {
			i.logger.Infof("Retrying batch upsert, attempt %d of %d", attempt, i.maxRetries)
		}
		if err = i.db.UpsertMarketRecords(batch); err == nil {
			return nil
		}
	}
	return fmt.Errorf("failed to persist batch after %d attempts: %w", i.maxRetries+1, err)
}
