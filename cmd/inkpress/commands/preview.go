package commands

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/inkpress/inkpress/internal/metrics"
	"github.com/inkpress/inkpress/internal/preview"
	"github.com/inkpress/inkpress/internal/site"
)

// PreviewCmd implements the 'preview' command.
type PreviewCmd struct {
	Addr     string `help:"Listen address (overrides preview.addr)"`
	NoDrafts bool   `name:"no-drafts" help:"Exclude draft posts from the preview"`
}

func (p *PreviewCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if p.Addr != "" {
		cfg.Preview.Addr = p.Addr
	}

	registry := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(registry)

	build := func(ctx context.Context) error {
		opts := []site.Option{
			site.WithRecorder(recorder),
			site.WithBuildTime(time.Now().UTC()),
		}
		if !p.NoDrafts {
			opts = append(opts, site.WithDrafts())
		}
		gen, err := site.New(cfg, opts...)
		if err != nil {
			return err
		}
		_, err = gen.Build(ctx)
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Printf("Preview on http://%s (Ctrl-C to stop)\n", cfg.Preview.Addr)
	server := preview.NewServer(cfg, cfg.OutputDir, build,
		preview.WithMetricsHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	err = server.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
