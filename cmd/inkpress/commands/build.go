package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	appcfg "github.com/inkpress/inkpress/internal/config"
	"github.com/inkpress/inkpress/internal/site"
	"github.com/inkpress/inkpress/internal/state"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output             string `short:"o" help:"Override the configured output directory"`
	Drafts             bool   `help:"Include draft posts in the output"`
	VerifyReproducible bool   `name:"verify-reproducible" help:"Build twice and verify identical output"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	fmt.Println("Starting site build")

	cfg, err := loadConfig(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ledger, err := openLedger(root)
	if err != nil {
		return fmt.Errorf("open build ledger: %w", err)
	}
	defer ledger.Close()

	buildTime := time.Now().UTC()
	gen, err := site.New(cfg, b.options(buildTime, b.Output)...)
	if err != nil {
		return err
	}

	ctx := context.Background()
	report, buildErr := gen.Build(ctx)

	if recordErr := ledger.Record(ctx, state.Build{
		ID:          report.BuildID,
		StartedAt:   report.StartedAt,
		FinishedAt:  report.StartedAt.Add(report.Duration),
		ContentHash: report.ContentHash,
		Outcome:     report.Outcome,
		PostCount:   report.PostCount,
	}); recordErr != nil {
		fmt.Fprintf(os.Stderr, "warning: build not recorded in ledger: %v\n", recordErr)
	}

	if buildErr != nil {
		return buildErr
	}

	if b.VerifyReproducible {
		if err := b.verifyReproducible(ctx, cfg, gen.OutputDir(), buildTime); err != nil {
			return err
		}
		fmt.Println("Reproducibility verified")
	}

	fmt.Printf("Build completed: %d posts, content hash %s\n", report.PostCount, shortHash(report.ContentHash))
	return nil
}

func (b *BuildCmd) options(buildTime time.Time, outputDir string) []site.Option {
	opts := []site.Option{site.WithBuildTime(buildTime), site.WithOutputDir(outputDir)}
	if b.Drafts {
		opts = append(opts, site.WithDrafts())
	}
	return opts
}

// verifyReproducible rebuilds into a scratch directory with the same pinned
// build time and compares the two manifests file by file.
func (b *BuildCmd) verifyReproducible(ctx context.Context, cfg *appcfg.Config, outputDir string, buildTime time.Time) error {
	scratch, err := os.MkdirTemp("", "inkpress-verify-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(scratch)

	gen, err := site.New(cfg, b.options(buildTime, scratch)...)
	if err != nil {
		return err
	}
	if _, err := gen.Build(ctx); err != nil {
		return fmt.Errorf("verification build failed: %w", err)
	}

	first, err := site.ReadManifest(outputDir)
	if err != nil {
		return err
	}
	second, err := site.ReadManifest(scratch)
	if err != nil {
		return err
	}

	if first.ContentHash != second.ContentHash {
		return fmt.Errorf("content hash mismatch: %s vs %s", first.ContentHash, second.ContentHash)
	}
	if len(first.Files) != len(second.Files) {
		return fmt.Errorf("output file count mismatch: %d vs %d", len(first.Files), len(second.Files))
	}
	for i, f := range first.Files {
		s := second.Files[i]
		if f.Path != s.Path || f.Hash != s.Hash {
			return fmt.Errorf("output differs at %s", f.Path)
		}
	}
	return nil
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
