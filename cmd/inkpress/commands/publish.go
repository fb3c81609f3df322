package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/inkpress/inkpress/internal/logfields"
	"github.com/inkpress/inkpress/internal/publish"
	"github.com/inkpress/inkpress/internal/site"
	"github.com/inkpress/inkpress/internal/state"
)

// PublishCmd implements the 'publish' command. It publishes the output tree
// produced by the most recent build; it never rebuilds.
type PublishCmd struct {
	Output string `short:"o" help:"Override the configured output directory"`
}

func (p *PublishCmd) Run(_ *Global, root *CLI) error {
	fmt.Println("Publishing site")

	cfg, err := loadConfig(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	outputDir := cfg.OutputDir
	if p.Output != "" {
		outputDir = p.Output
	}

	manifest, err := site.ReadManifest(outputDir)
	if err != nil {
		return fmt.Errorf("no build manifest in %s (run build first): %w", outputDir, err)
	}

	ledger, err := openLedger(root)
	if err != nil {
		return fmt.Errorf("open build ledger: %w", err)
	}
	defer ledger.Close()

	ctx := context.Background()

	// The build may have been produced elsewhere (CI artifact); make sure the
	// ledger has a row to mark as published.
	if err := ledger.Record(ctx, state.Build{
		ID:          manifest.BuildID,
		StartedAt:   manifest.GeneratedAt,
		FinishedAt:  manifest.GeneratedAt,
		ContentHash: manifest.ContentHash,
		Outcome:     "success",
		PostCount:   manifest.PostCount,
	}); err != nil {
		slog.Debug("Build already recorded", logfields.BuildID(manifest.BuildID))
	}

	report := &site.BuildReport{
		BuildID:     manifest.BuildID,
		StartedAt:   manifest.GeneratedAt,
		ContentHash: manifest.ContentHash,
		PostCount:   manifest.PostCount,
		Outcome:     "success",
	}

	start := time.Now()
	if err := publish.New(cfg, publish.WithLedger(ledger)).Run(ctx, outputDir, report); err != nil {
		return err
	}

	fmt.Printf("Publish completed in %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}
