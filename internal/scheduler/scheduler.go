// Package scheduler wires up the cron job that periodically recomputes the
// cached funnel reports of every organisation.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"jobmate/insights-service/internal/logger"
)

// Refresher recomputes every organisation's funnels.
type Refresher interface {
	RefreshAll(ctx context.Context) error
}

// Scheduler wraps robfig/cron and manages the refresh loop.
type Scheduler struct {
	cron      *cron.Cron
	refresher Refresher
	spec      string // cron spec, e.g. "@every 30m"
}

// New creates a Scheduler that fires every interval, rounded down to whole
// minutes with a one-minute floor. A tick is skipped while the previous run
// is still going.
func New(refresher Refresher, interval time.Duration) *Scheduler {
	minutes := max(int(interval/time.Minute), 1)
	log := cronLogger{}
	return &Scheduler{
		cron:      cron.New(cron.WithLogger(log), cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log))),
		refresher: refresher,
		spec:      fmt.Sprintf("@every %dm", minutes),
	}
}

// Spec returns the cron spec the job is registered with.
func (s *Scheduler) Spec() string { return s.spec }

// Start registers the job and starts the scheduler. Also runs one refresh
// immediately so the cache is warm without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "insights.scheduler"})

	_, err := s.cron.AddFunc(s.spec, func() {
		s.runRefresh(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	slog.InfoContext(ctx, "cron started", "spec", s.spec)

	go s.runRefresh(ctx)

	return nil
}

// Stop halts the scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	slog.Info("cron stopped", "component", "insights.scheduler")
}

func (s *Scheduler) runRefresh(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	slog.InfoContext(ctx, "funnel refresh cycle started")
	if err := s.refresher.RefreshAll(ctx); err != nil {
		slog.WarnContext(ctx, "funnel refresh cycle had failures", "err", err, "took", time.Since(start))
		return
	}
	slog.InfoContext(ctx, "funnel refresh cycle complete", "took", time.Since(start))
}

// cronLogger routes robfig/cron's logging to slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}
