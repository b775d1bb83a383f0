// Package scheduler wires up the cron job that periodically sweeps the
// notification queue for deferred and unclaimed rows.
package scheduler

import (
	"context"
	"fmt"

	"go-talentbridge-backend/internal/domain"
	"go-talentbridge-backend/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler wraps robfig/cron and manages the dispatch sweep loop.
type Scheduler struct {
	cron           *cron.Cron
	notificationUC domain.NotificationUsecase
	spec           string // cron spec, e.g. "@every 1m"
}

// New creates a Scheduler that fires every intervalMinutes minutes.
func New(notificationUC domain.NotificationUsecase, intervalMinutes int) *Scheduler {
	if intervalMinutes < 1 {
		intervalMinutes = 1
	}
	return &Scheduler{
		cron:           cron.New(),
		notificationUC: notificationUC,
		spec:           fmt.Sprintf("@every %dm", intervalMinutes),
	}
}

// Start registers the sweep and starts the scheduler. Also runs one sweep
// immediately so notifications deferred across a restart go out without
// waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runSweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	logger.Log.Info("Notification sweep scheduler started", "spec", s.spec)

	go s.runSweep(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	logger.Log.Info("Notification sweep scheduler stopped")
}

func (s *Scheduler) runSweep(ctx context.Context) {
	if err := s.notificationUC.ProcessScheduled(ctx); err != nil {
		logger.Log.Error("Notification sweep failed", "error", err)
	}
}
