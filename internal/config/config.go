// Package config loads and normalizes the site configuration (inkpress.yaml).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the configuration file looked up when --config is not given.
const DefaultFileName = "inkpress.yaml"

// Config is the root site configuration document.
type Config struct {
	SiteName        string         `yaml:"site_name"`
	SiteURL         string         `yaml:"site_url"`
	SiteDescription string         `yaml:"site_description,omitempty"`
	RepoURL         string         `yaml:"repo_url,omitempty"`
	ContentDir      string         `yaml:"content_dir,omitempty"`
	OutputDir       string         `yaml:"output_dir,omitempty"`
	Theme           ThemeConfig    `yaml:"theme,omitempty"`
	Plugins         []PluginConfig `yaml:"plugins,omitempty"`
	Markdown        MarkdownConfig `yaml:"markdown,omitempty"`
	Extra           ExtraConfig    `yaml:"extra,omitempty"`
	Publish         PublishConfig  `yaml:"publish,omitempty"`
	Preview         PreviewConfig  `yaml:"preview,omitempty"`
	Daemon          DaemonConfig   `yaml:"daemon,omitempty"`
}

// ThemeConfig selects the theme name and its light/dark palette variants.
type ThemeConfig struct {
	Name    string   `yaml:"name,omitempty"`
	Palette []string `yaml:"palette,omitempty"` // e.g. ["teal", "slate"]
}

// PluginConfig declares an enabled plugin plus its options.
//
// Recognized names: blog (options: post_excerpt, blog_dir), search, social.
type PluginConfig struct {
	Name    string            `yaml:"name"`
	Options map[string]string `yaml:"options,omitempty"`
}

// ExcerptPolicy enumerates the blog plugin's post_excerpt option.
type ExcerptPolicy string

const (
	ExcerptRequired ExcerptPolicy = "required"
	ExcerptOptional ExcerptPolicy = "optional"
)

// MarkdownConfig toggles goldmark extensions by name.
type MarkdownConfig struct {
	Extensions []string `yaml:"extensions,omitempty"` // gfm, footnote, typographer, attributes
}

// ExtraConfig carries site metadata passed straight through to templates.
type ExtraConfig struct {
	Analytics string            `yaml:"analytics,omitempty"` // analytics property id
	Social    map[string]string `yaml:"social,omitempty"`    // platform -> URL
}

// PublishConfig describes the two publish destinations and the optional
// build announcement.
type PublishConfig struct {
	Pages    *PagesConfig    `yaml:"pages,omitempty"`
	Bucket   *BucketConfig   `yaml:"bucket,omitempty"`
	Announce *AnnounceConfig `yaml:"announce,omitempty"`
}

// PagesConfig configures the hosted-pages branch destination.
type PagesConfig struct {
	RemoteURL string `yaml:"remote_url"`
	Branch    string `yaml:"branch,omitempty"` // default gh-pages
	Username  string `yaml:"username,omitempty"`
	Token     string `yaml:"token,omitempty"` // usually supplied via ${INKPRESS_PAGES_TOKEN}
}

// BucketConfig configures the object-storage destination, synced with an
// external CLI (mc-style mirror).
type BucketConfig struct {
	Bucket    string   `yaml:"bucket"`
	SyncTool  string   `yaml:"sync_tool,omitempty"` // default "mc"
	ExtraArgs []string `yaml:"extra_args,omitempty"`
}

// AnnounceConfig configures the optional NATS publish announcement.
type AnnounceConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject,omitempty"` // default inkpress.published
}

// PreviewConfig tunes the local preview server.
type PreviewConfig struct {
	Addr        string `yaml:"addr,omitempty"`         // default 127.0.0.1:8000
	QuietWindow string `yaml:"quiet_window,omitempty"` // rebuild debounce, default 300ms
}

// DaemonConfig tunes daemon mode.
type DaemonConfig struct {
	Interval string `yaml:"interval,omitempty"` // rebuild-and-publish interval, default 1h
}

// Load reads, env-expands, unmarshals, and normalizes a configuration file.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand ${VAR} references so credentials never live in the file itself.
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// BlogPlugin returns the blog plugin declaration, if enabled.
func (c *Config) BlogPlugin() (PluginConfig, bool) {
	for _, p := range c.Plugins {
		if p.Name == "blog" {
			return p, true
		}
	}
	return PluginConfig{}, false
}

// ExcerptPolicy resolves the blog plugin's post_excerpt option.
// Sites without the blog plugin get the optional policy.
func (c *Config) ExcerptPolicy() ExcerptPolicy {
	p, ok := c.BlogPlugin()
	if !ok {
		return ExcerptOptional
	}
	if p.Options["post_excerpt"] == string(ExcerptRequired) {
		return ExcerptRequired
	}
	return ExcerptOptional
}

// BlogDir resolves the blog plugin's blog_dir option relative to ContentDir.
func (c *Config) BlogDir() string {
	if p, ok := c.BlogPlugin(); ok {
		if d := p.Options["blog_dir"]; d != "" {
			return d
		}
	}
	return "posts"
}

// HasPlugin reports whether a plugin name is enabled.
func (c *Config) HasPlugin(name string) bool {
	for _, p := range c.Plugins {
		if p.Name == name {
			return true
		}
	}
	return false
}
