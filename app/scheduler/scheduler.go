// Package scheduler triggers periodic content checks.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/lowlimit/podbot/app/checker"
)

// Grace period before the first check after startup, so the Discord
// session is fully ready when announcements go out.
const startupCheckDelay = 5 * time.Second

type Scheduler struct {
	cron         *cron.Cron
	checker      *checker.Checker
	interval     time.Duration
	startupTimer *time.Timer
}

func NewScheduler(checkerSvc *checker.Checker, intervalMinutes int) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		checker:  checkerSvc,
		interval: time.Duration(intervalMinutes) * time.Minute,
	}
}

func (s *Scheduler) Start() error {
	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, s.runCheck); err != nil {
		return fmt.Errorf("failed to schedule content check: %w", err)
	}

	s.startupTimer = time.AfterFunc(startupCheckDelay, s.runCheck)
	s.cron.Start()

	slog.Info("Scheduler started", "interval", s.interval.String())

	return nil
}

func (s *Scheduler) Stop() {
	if s.startupTimer != nil {
		s.startupTimer.Stop()
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) runCheck() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.checker.Run(ctx, checker.ModeFull); err != nil {
		slog.Error("Scheduled check failed", "error", err)
	}
}
