package config

import (
	"fmt"
	"strings"
	"time"

	ierrors "github.com/inkpress/inkpress/internal/errors"
)

// knownPlugins is the closed set of plugin names the generator understands.
// search and social are accepted and recorded for templates; blog drives
// excerpt and listing behavior.
var knownPlugins = map[string]struct{}{
	"blog":   {},
	"search": {},
	"social": {},
}

// knownMarkdownExtensions maps accepted extension names.
var knownMarkdownExtensions = map[string]struct{}{
	"gfm":         {},
	"footnote":    {},
	"typographer": {},
	"attributes":  {},
}

// Normalize applies defaults and validates the closed-set fields.
// It mutates cfg in place.
func Normalize(cfg *Config) error {
	if cfg.SiteName == "" {
		return ierrors.ConfigRequired("site_name")
	}
	if cfg.SiteURL == "" {
		return ierrors.ConfigRequired("site_url")
	}
	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")

	if cfg.ContentDir == "" {
		cfg.ContentDir = "content"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "site"
	}
	if cfg.Theme.Name == "" {
		cfg.Theme.Name = "plain"
	}
	if len(cfg.Theme.Palette) == 0 {
		cfg.Theme.Palette = []string{"light", "dark"}
	}

	for _, p := range cfg.Plugins {
		if _, ok := knownPlugins[p.Name]; !ok {
			return ierrors.ValidationFailed("plugins", fmt.Sprintf("unknown plugin %q", p.Name))
		}
		if p.Name == "blog" {
			if v, ok := p.Options["post_excerpt"]; ok && v != string(ExcerptRequired) && v != string(ExcerptOptional) {
				return ierrors.ValidationFailed("plugins.blog.post_excerpt", fmt.Sprintf("must be required or optional, got %q", v))
			}
		}
	}

	if len(cfg.Markdown.Extensions) == 0 {
		cfg.Markdown.Extensions = []string{"gfm", "footnote", "typographer"}
	}
	for _, ext := range cfg.Markdown.Extensions {
		if _, ok := knownMarkdownExtensions[ext]; !ok {
			return ierrors.ValidationFailed("markdown.extensions", fmt.Sprintf("unknown extension %q", ext))
		}
	}

	if cfg.Publish.Pages != nil {
		if cfg.Publish.Pages.RemoteURL == "" {
			return ierrors.ConfigRequired("publish.pages.remote_url")
		}
		if cfg.Publish.Pages.Branch == "" {
			cfg.Publish.Pages.Branch = "gh-pages"
		}
	}
	if cfg.Publish.Bucket != nil {
		if cfg.Publish.Bucket.Bucket == "" {
			return ierrors.ConfigRequired("publish.bucket.bucket")
		}
		if cfg.Publish.Bucket.SyncTool == "" {
			cfg.Publish.Bucket.SyncTool = "mc"
		}
	}
	if cfg.Publish.Announce != nil {
		if cfg.Publish.Announce.URL == "" {
			return ierrors.ConfigRequired("publish.announce.url")
		}
		if cfg.Publish.Announce.Subject == "" {
			cfg.Publish.Announce.Subject = "inkpress.published"
		}
	}

	if cfg.Preview.Addr == "" {
		cfg.Preview.Addr = "127.0.0.1:8000"
	}
	if cfg.Preview.QuietWindow == "" {
		cfg.Preview.QuietWindow = "300ms"
	}
	if _, err := time.ParseDuration(cfg.Preview.QuietWindow); err != nil {
		return ierrors.ValidationFailed("preview.quiet_window", err.Error())
	}

	if cfg.Daemon.Interval == "" {
		cfg.Daemon.Interval = "1h"
	}
	if _, err := time.ParseDuration(cfg.Daemon.Interval); err != nil {
		return ierrors.ValidationFailed("daemon.interval", err.Error())
	}

	return nil
}

// QuietWindow returns the parsed preview debounce window.
// Normalize guarantees the value parses.
func (c *Config) QuietWindow() time.Duration {
	d, _ := time.ParseDuration(c.Preview.QuietWindow)
	return d
}

// DaemonInterval returns the parsed daemon rebuild interval.
func (c *Config) DaemonInterval() time.Duration {
	d, _ := time.ParseDuration(c.Daemon.Interval)
	return d
}
