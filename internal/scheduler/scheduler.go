// Package scheduler runs the periodic ledger reconciliation repair job.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/Aaditya88888/netwin-tournament-sub001/internal/services"
	"github.com/go-co-op/gocron/v2"
	"golang.org/x/exp/slog"
)

// Scheduler owns the gocron scheduler the repair job runs on
type Scheduler struct {
	sched      gocron.Scheduler
	reconciler services.ReconciliationService
	interval   time.Duration
}

// New creates a scheduler that runs a repair pass every interval. Passes never overlap; a pass
// that overruns pushes the next one back.
func New(reconciler services.ReconciliationService, interval time.Duration) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("reconciliation interval must be positive, got %s", interval)
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	s := &Scheduler{sched: sched, reconciler: reconciler, interval: interval}
	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.repair),
		gocron.WithName("ledger-reconciliation"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("failed to schedule reconciliation job: %w", err)
	}
	return s, nil
}

// Start begins running the job in the background
func (s *Scheduler) Start() {
	slog.Info("Reconciliation scheduler started", "interval", s.interval)
	s.sched.Start()
}

// Shutdown waits for a running pass to finish and stops the scheduler
func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}

func (s *Scheduler) repair() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	if _, err := s.reconciler.RepairUnsynced(ctx); err != nil {
		slog.Error("Scheduled reconciliation failed", "error", err)
	}
}
