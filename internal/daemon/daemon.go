// Package daemon runs the build-and-publish cycle on a fixed interval.
// The publish idempotency check makes unchanged cycles cheap: the site is
// rebuilt, the content hash matches, and nothing is pushed.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	appcfg "github.com/inkpress/inkpress/internal/config"
	"github.com/inkpress/inkpress/internal/logfields"
)

// CycleFunc runs one build-and-publish cycle.
type CycleFunc func(ctx context.Context) error

// Daemon schedules the cycle until its context is canceled.
type Daemon struct {
	interval time.Duration
	cycle    CycleFunc
}

// New creates a daemon using the configured interval.
func New(cfg *appcfg.Config, cycle CycleFunc) *Daemon {
	return &Daemon{interval: cfg.DaemonInterval(), cycle: cycle}
}

// Run executes one cycle immediately, then repeats on the interval.
// It blocks until ctx is canceled and shuts the scheduler down cleanly.
func (d *Daemon) Run(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	task := func() {
		start := time.Now()
		if err := d.cycle(ctx); err != nil {
			slog.Error("Cycle failed", logfields.Error(err))
			return
		}
		slog.Info("Cycle complete", logfields.DurationMS(float64(time.Since(start).Milliseconds())))
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(d.interval),
		gocron.NewTask(task),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("schedule cycle: %w", err)
	}

	scheduler.Start()
	slog.Info("Daemon started", slog.Duration("interval", d.interval))

	<-ctx.Done()
	slog.Info("Daemon stopping")
	return scheduler.Shutdown()
}
