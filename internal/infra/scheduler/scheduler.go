package scheduler

import (
	"context"
	"time"

	"kitchen_notification_bot/internal/app" // For NotificationService interface
	"kitchen_notification_bot/internal/domain/order"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// PollScheduler drives the whole pipeline: at every tick it acquires one
// snapshot from the order service and feeds the same snapshot to the
// notification pipeline and the batch aggregator. A failed poll is logged
// and skipped; nothing in a single bad run may halt subsequent polls.
type PollScheduler struct {
	cronEngine   *cron.Cron
	source       order.SnapshotSource
	notifService app.NotificationService
	batchService *app.BatchService
	logger       *logrus.Logger
	pollSpec     string
	pollTimeout  time.Duration
}

func NewPollScheduler(
	source order.SnapshotSource,
	notifService app.NotificationService,
	batchService *app.BatchService,
	logger *logrus.Logger,
	pollSpec string, // e.g. "@every 10s"
	pollTimeout time.Duration,
) *PollScheduler {
	return &PollScheduler{
		cronEngine:   cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		source:       source,
		notifService: notifService,
		batchService: batchService,
		logger:       logger,
		pollSpec:     pollSpec,
		pollTimeout:  pollTimeout,
	}
}

func (s *PollScheduler) Start() error {
	s.logger.Info("INFO: Starting poll scheduler...")

	if _, err := s.cronEngine.AddFunc(s.pollSpec, s.RunOnce); err != nil {
		return err
	}

	s.cronEngine.Start()
	s.logger.Infof("INFO: Poll scheduler started with spec %q.", s.pollSpec)
	return nil
}

// RunOnce executes a single poll cycle. Exported so a first cycle can be run
// eagerly at startup instead of waiting for the first tick.
func (s *PollScheduler) RunOnce() {
	snapCtx, cancel := context.WithTimeout(context.Background(), s.pollTimeout)
	snap, err := s.source.Snapshot(snapCtx)
	cancel()
	if err != nil {
		// Transient by definition; the next tick retries from scratch.
		s.logger.Warnf("WARN: Snapshot poll failed, skipping this cycle: %v", err)
		return
	}

	s.batchService.UpdateSnapshot(snap)

	procCtx, cancel := context.WithTimeout(context.Background(), 1*time.Minute) // Context for the job
	defer cancel()
	s.notifService.ProcessSnapshot(procCtx, snap)
}

func (s *PollScheduler) Stop() {
	s.logger.Info("INFO: Stopping poll scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()               // Wait for graceful shutdown
	s.logger.Info("INFO: Poll scheduler gracefully stopped.")
}
