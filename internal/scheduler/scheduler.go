package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"propwriter/server/internal/ingest"
)

// Scheduler runs the weekly feed ingestion on a cron schedule. Runs are
// serialized by a job mutex so a slow ingestion cannot overlap the next one.
type Scheduler struct {
	cron     *cron.Cron
	ingester *ingest.Ingester
	logger   *logrus.Logger
	timeout  time.Duration
	jobMutex sync.Mutex
}

func NewScheduler(ingester *ingest.Ingester, timeout time.Duration, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		ingester: ingester,
		logger:   logger,
		timeout:  timeout,
	}
}

// Start registers the ingestion job under the given cron expression and
// begins the schedule.
func (s *Scheduler) Start(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, s.runIngestion); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.WithField("schedule", schedule).Info("Ingestion scheduler started")
	return nil
}

// Stop halts the schedule and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) runIngestion() {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	s.logger.Info("Starting scheduled feed ingestion")

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	report, err := s.ingester.Run(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Scheduled feed ingestion failed")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"records":        report.RecordCount,
		"zip_codes":      report.ZipCount,
		"failed_batches": report.FailedBatches,
		"duration":       report.Duration.String(),
	}).Info("Scheduled feed ingestion completed")
}
