package site

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/inkpress/inkpress/internal/config"
)

var fixedBuildTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func siteConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		SiteName:        "Example Blog",
		SiteURL:         "https://blog.example.org",
		SiteDescription: "Notes on Quarkus and Java tooling",
		ContentDir:      filepath.Join(t.TempDir(), "content"),
		OutputDir:       filepath.Join(t.TempDir(), "site"),
		Theme:           config.ThemeConfig{Name: "plain", Palette: []string{"teal", "slate"}},
		Markdown:        config.MarkdownConfig{Extensions: []string{"gfm", "footnote", "typographer"}},
		Plugins: []config.PluginConfig{
			{Name: "blog", Options: map[string]string{"post_excerpt": "optional"}},
		},
	}
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.ContentDir, "posts"), 0o755))
	return cfg
}

func writePost(t *testing.T, cfg *config.Config, name, content string) {
	t.Helper()
	path := filepath.Join(cfg.ContentDir, "posts", name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readOutput(t *testing.T, cfg *config.Config, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, rel))
	require.NoError(t, err)
	return string(data)
}

const publishedWithMarker = `---
title: Published post
date: 2024-02-12
authors: [jdoe]
categories: [quarkus]
---
First paragraph.

Second paragraph.

<!-- more -->

Hidden tail.
`

const draftNoMarker = `---
title: Secret draft
date: 2024-02-20
draft: true
---
Work in progress.
`

func buildSite(t *testing.T, cfg *config.Config, opts ...Option) *BuildReport {
	t.Helper()
	opts = append([]Option{WithBuildTime(fixedBuildTime)}, opts...)
	g, err := New(cfg, opts...)
	require.NoError(t, err)
	report, err := g.Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, "success", report.Outcome)
	return report
}

// The draft must be entirely absent; the published sibling
// appears in the index with exactly its two lead paragraphs and a read-more
// link to its full page.
func TestBuild_DraftAbsent_PublishedExcerpted(t *testing.T) {
	cfg := siteConfig(t)
	writePost(t, cfg, "published.md", publishedWithMarker)
	writePost(t, cfg, "draft.md", draftNoMarker)

	report := buildSite(t, cfg)
	require.Equal(t, 1, report.PostCount)

	_, err := os.Stat(filepath.Join(cfg.OutputDir, "posts", "draft"))
	require.True(t, os.IsNotExist(err), "draft page must not exist")

	index := readOutput(t, cfg, "index.html")
	require.NotContains(t, index, "Secret draft")
	require.Contains(t, index, "First paragraph.")
	require.Contains(t, index, "Second paragraph.")
	require.NotContains(t, index, "Hidden tail", "index must stop at the excerpt boundary")
	require.Contains(t, index, "read-more")
	require.Contains(t, index, "https://blog.example.org/posts/published/")

	page := readOutput(t, cfg, filepath.Join("posts", "published", "index.html"))
	require.Contains(t, page, "Hidden tail", "full page carries the whole body")
	require.NotContains(t, page, "<!-- more -->")

	for _, feedFile := range []string{"feed_rss.xml", "feed_atom.xml"} {
		content := readOutput(t, cfg, feedFile)
		require.NotContains(t, content, "Secret draft")
		require.NotContains(t, content, "Hidden tail")
	}
}

// Feeds list the newer post first regardless of file order on disk.
func TestBuild_FeedReverseChronological(t *testing.T) {
	cfg := siteConfig(t)
	writePost(t, cfg, "first.md", "---\ntitle: First post\ndate: 2024-01-02\n---\nOlder.\n")
	writePost(t, cfg, "second.md", "---\ntitle: Second post\ndate: 2024-02-14\n---\nNewer.\n")

	buildSite(t, cfg)

	rss := readOutput(t, cfg, "feed_rss.xml")
	require.Less(t, strings.Index(rss, "Second post"), strings.Index(rss, "First post"))

	index := readOutput(t, cfg, "index.html")
	require.Less(t, strings.Index(index, "Second post"), strings.Index(index, "First post"))
}

func TestBuild_TaxonomyPages(t *testing.T) {
	cfg := siteConfig(t)
	writePost(t, cfg, "a.md", publishedWithMarker)
	writePost(t, cfg, "b.md", "---\ntitle: Other\ndate: 2024-01-05\ncategories: [java]\nauthors: [asmith]\n---\nBody.\n")

	buildSite(t, cfg)

	categories := readOutput(t, cfg, filepath.Join("categories", "index.html"))
	require.Contains(t, categories, "quarkus")
	require.Contains(t, categories, "java")

	quarkus := readOutput(t, cfg, filepath.Join("categories", "quarkus", "index.html"))
	require.Contains(t, quarkus, "Published post")
	require.NotContains(t, quarkus, "Other")

	authors := readOutput(t, cfg, filepath.Join("authors", "asmith", "index.html"))
	require.Contains(t, authors, "Other")
}

func TestBuild_RequiredExcerptPolicy_FailsBuild(t *testing.T) {
	cfg := siteConfig(t)
	cfg.Plugins = []config.PluginConfig{
		{Name: "blog", Options: map[string]string{"post_excerpt": "required"}},
	}
	writePost(t, cfg, "no-marker.md", "---\ntitle: T\ndate: 2024-01-02\n---\nNo marker here.\n")

	g, err := New(cfg, WithBuildTime(fixedBuildTime))
	require.NoError(t, err)
	report, err := g.Build(context.Background())
	require.Error(t, err)
	require.Equal(t, "failed", report.Outcome)
	require.Contains(t, err.Error(), "excerpt marker")
}

func TestBuild_DraftsIncludedInPreviewOnly(t *testing.T) {
	cfg := siteConfig(t)
	writePost(t, cfg, "published.md", publishedWithMarker)
	writePost(t, cfg, "draft.md", draftNoMarker)

	buildSite(t, cfg, WithDrafts())

	// The draft page exists, but never enters the index or feeds.
	_, err := os.Stat(filepath.Join(cfg.OutputDir, "posts", "draft", "index.html"))
	require.NoError(t, err)
	require.NotContains(t, readOutput(t, cfg, "index.html"), "Secret draft")
	require.NotContains(t, readOutput(t, cfg, "feed_rss.xml"), "Secret draft")
}

func TestBuild_AssetsCopied(t *testing.T) {
	cfg := siteConfig(t)
	writePost(t, cfg, "a.md", publishedWithMarker)
	imgPath := filepath.Join(cfg.ContentDir, "posts", "diagram.png")
	require.NoError(t, os.WriteFile(imgPath, []byte{0x89, 'P', 'N', 'G'}, 0o644))

	buildSite(t, cfg)

	require.FileExists(t, filepath.Join(cfg.OutputDir, "posts", "diagram.png"))
	require.Contains(t, readOutput(t, cfg, filepath.Join("assets", "style.css")), "theme: plain")
}

// Rebuilding an unchanged corpus with a pinned build time must reproduce the
// output tree byte for byte; with a moving build time only timestamp-bearing
// files (feeds, manifest) may differ.
func TestBuild_ReproducibleForUnchangedCorpus(t *testing.T) {
	cfg := siteConfig(t)
	writePost(t, cfg, "a.md", publishedWithMarker)
	writePost(t, cfg, "b.md", "---\ntitle: Other\ndate: 2024-01-05\n---\nBody.\n")

	report1 := buildSite(t, cfg)
	first := snapshotTree(t, cfg.OutputDir)

	report2 := buildSite(t, cfg)
	second := snapshotTree(t, cfg.OutputDir)

	require.Equal(t, report1.ContentHash, report2.ContentHash)
	require.NotEqual(t, report1.BuildID, report2.BuildID)

	for path, content := range first {
		if path == ManifestName {
			continue // carries the per-run build id
		}
		require.Equal(t, content, second[path], "file %s must be reproducible", path)
	}

	m1, err := ReadManifest(cfg.OutputDir)
	require.NoError(t, err)
	require.Equal(t, report2.ContentHash, m1.ContentHash)
}

func TestBuild_ManifestListsOutputs(t *testing.T) {
	cfg := siteConfig(t)
	writePost(t, cfg, "a.md", publishedWithMarker)

	buildSite(t, cfg)

	m, err := ReadManifest(cfg.OutputDir)
	require.NoError(t, err)
	require.Equal(t, 1, m.PostCount)
	require.NotEmpty(t, m.ContentHash)

	paths := make(map[string]bool)
	for _, f := range m.Files {
		paths[f.Path] = true
		require.Len(t, f.Hash, 64)
	}
	require.True(t, paths["index.html"])
	require.True(t, paths["feed_rss.xml"])
	require.True(t, paths["feed_atom.xml"])
	require.True(t, paths["posts/published/index.html"])
	require.False(t, paths[ManifestName], "manifest must not list itself")
}

func TestBuild_CanceledContext(t *testing.T) {
	cfg := siteConfig(t)
	writePost(t, cfg, "a.md", publishedWithMarker)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g, err := New(cfg, WithBuildTime(fixedBuildTime))
	require.NoError(t, err)
	report, err := g.Build(ctx)
	require.Error(t, err)
	require.Equal(t, "canceled", report.Outcome)
}

func snapshotTree(t *testing.T, root string) map[string]string {
	t.Helper()
	out := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	require.NoError(t, err)
	return out
}
