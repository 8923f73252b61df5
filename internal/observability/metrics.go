package observability

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus counters and histograms for the ingestion
// pipeline.
type Metrics struct {
	LinesRead      prometheus.Counter
	RecordsKept    prometheus.Counter
	FailedBatches  prometheus.Counter
	IngestDuration prometheus.Histogram
}

func newMetrics() *Metrics {
	return &Metrics{
		LinesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "market_data",
			Name:      "feed_lines_read_total",
			Help:      "Total data lines read from the market tracker feed.",
		}),
		RecordsKept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "market_data",
			Name:      "records_kept_total",
			Help:      "Total deduplicated records kept after parsing.",
		}),
		FailedBatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "market_data",
			Name:      "failed_batches_total",
			Help:      "Total record batches that failed to persist.",
		}),
		IngestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "market_data",
			Name:      "ingest_duration_seconds",
			Help:      "Duration of a complete feed ingestion run.",
			Buckets:   []float64{1, 5, 10, 20, 30, 45, 60, 90},
		}),
	}
}

// NewMetrics creates and registers all ingestion metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.LinesRead, m.RecordsKept, m.FailedBatches, m.IngestDuration)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics across tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
