// Package commands defines the CLI command tree.
package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/inkpress/inkpress/internal/config"
	"github.com/inkpress/inkpress/internal/state"
)

// Global carries shared state into subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI is the root command definition with global flags.
type CLI struct {
	Config  string           `short:"c" help:"Site configuration file path" default:"inkpress.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	State   string           `help:"Build ledger database path" default:".inkpress.db"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Init    InitCmd    `cmd:"" help:"Scaffold a new site configuration and content tree"`
	New     NewCmd     `cmd:"" help:"Create a new post skeleton"`
	Lint    LintCmd    `cmd:"" help:"Validate content files without building"`
	Build   BuildCmd   `cmd:"" help:"Build the static site into the output directory"`
	Preview PreviewCmd `cmd:"" help:"Serve the site locally and rebuild on changes"`
	Publish PublishCmd `cmd:"" help:"Publish the built site to the configured destinations"`
	Daemon  DaemonCmd  `cmd:"" help:"Rebuild and publish continuously on an interval"`
}

// AfterApply runs after flag parsing; set up logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

func loadConfig(root *CLI) (*config.Config, error) {
	return config.Load(root.Config)
}

func openLedger(root *CLI) (*state.Store, error) {
	return state.Open(root.State)
}
