package scheduler

import (
	"context"
	"fmt"
	"time"

	"ivf_stage_bot/internal/domain/stage"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DigestSender is implemented by *app.DigestService.
type DigestSender interface {
	SendDailyDigest(ctx context.Context) (int, error)
}

// ReferenceRefresher is implemented by *referencedata.Cache.
type ReferenceRefresher interface {
	Refresh(ctx context.Context) (*stage.Catalog, error)
}

type StageScheduler struct {
	cronEngine        *cron.Cron
	digest            DigestSender
	reference         ReferenceRefresher
	logger            *logrus.Entry
	cronSpecDigest    string
	cronSpecReference string
}

func NewStageScheduler(
	digest DigestSender,
	reference ReferenceRefresher,
	logger *logrus.Entry,
	location *time.Location,
	cronSpecDigest string, // e.g., "0 8 * * *" (8 AM daily)
	cronSpecReference string, // e.g., "0 */6 * * *"; empty disables the job
) *StageScheduler {
	if location == nil {
		location = time.Local
	}
	return &StageScheduler{
		cronEngine:        cron.New(cron.WithLocation(location)),
		digest:            digest,
		reference:         reference,
		logger:            logger,
		cronSpecDigest:    cronSpecDigest,
		cronSpecReference: cronSpecReference,
	}
}

// Start registers the jobs and starts the cron engine.
func (s *StageScheduler) Start() error {
	s.logger.Info("Starting stage scheduler...")

	if _, err := s.cronEngine.AddFunc(s.cronSpecDigest, s.RunDailyDigest); err != nil {
		return fmt.Errorf("could not add daily digest cron job %q: %w", s.cronSpecDigest, err)
	}

	if s.cronSpecReference != "" {
		if _, err := s.cronEngine.AddFunc(s.cronSpecReference, s.RunReferenceRefresh); err != nil {
			return fmt.Errorf("could not add reference refresh cron job %q: %w", s.cronSpecReference, err)
		}
	}

	s.cronEngine.Start()
	s.logger.WithField("jobs", len(s.cronEngine.Entries())).Info("Stage scheduler started")
	return nil
}

// RunDailyDigest is the body of the daily digest job.
func (s *StageScheduler) RunDailyDigest() {
	logCtx := s.logger.WithField("job", "daily_digest")
	logCtx.Info("Cron job triggered")
	// Longer timeout: one message per active cycle.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	sent, err := s.digest.SendDailyDigest(ctx)
	if err != nil {
		logCtx.WithError(err).WithField("sent", sent).Error("Daily digest failed")
		return
	}
	logCtx.WithField("sent", sent).Info("Daily digest done")
}

// RunReferenceRefresh is the body of the reference refresh job.
func (s *StageScheduler) RunReferenceRefresh() {
	logCtx := s.logger.WithField("job", "reference_refresh")
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()
	cat, err := s.reference.Refresh(ctx)
	if err != nil {
		logCtx.WithError(err).Error("Reference refresh failed; keeping previous data")
		return
	}
	logCtx.WithField("entries", cat.Len()).Info("Reference data refreshed")
}

func (s *StageScheduler) Stop() {
	s.logger.Info("Stopping stage scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Stage scheduler gracefully stopped")
}
