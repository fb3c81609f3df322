package commands

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/inkpress/inkpress/internal/daemon"
	"github.com/inkpress/inkpress/internal/publish"
	"github.com/inkpress/inkpress/internal/site"
	"github.com/inkpress/inkpress/internal/state"
)

// DaemonCmd implements the 'daemon' command: rebuild and publish on an
// interval until interrupted.
type DaemonCmd struct{}

func (d *DaemonCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ledger, err := openLedger(root)
	if err != nil {
		return fmt.Errorf("open build ledger: %w", err)
	}
	defer ledger.Close()

	publisher := publish.New(cfg, publish.WithLedger(ledger))

	cycle := func(ctx context.Context) error {
		gen, err := site.New(cfg, site.WithBuildTime(time.Now().UTC()))
		if err != nil {
			return err
		}
		report, err := gen.Build(ctx)

		recordErr := ledger.Record(ctx, state.Build{
			ID:          report.BuildID,
			StartedAt:   report.StartedAt,
			FinishedAt:  report.StartedAt.Add(report.Duration),
			ContentHash: report.ContentHash,
			Outcome:     report.Outcome,
			PostCount:   report.PostCount,
		})
		if err != nil {
			return err
		}
		if recordErr != nil {
			return recordErr
		}
		return publisher.Run(ctx, gen.OutputDir(), report)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Printf("Daemon running every %s (Ctrl-C to stop)\n", cfg.DaemonInterval())
	err = daemon.New(cfg, cycle).Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
