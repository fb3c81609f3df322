// Package site orchestrates the static build: corpus load, rendering,
// indexes, taxonomies, feeds, assets, and the output manifest, as an ordered
// fail-fast stage pipeline.
package site

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/inkpress/inkpress/internal/config"
	"github.com/inkpress/inkpress/internal/corpus"
	"github.com/inkpress/inkpress/internal/feed"
	"github.com/inkpress/inkpress/internal/logfields"
	"github.com/inkpress/inkpress/internal/metrics"
	"github.com/inkpress/inkpress/internal/post"
	"github.com/inkpress/inkpress/internal/render"
)

// ManifestName is the output manifest file written by the last stage.
const ManifestName = "manifest.json"

// Generator builds the static site from a loaded configuration.
type Generator struct {
	cfg           *config.Config
	recorder      metrics.Recorder
	layouts       *render.Layouts
	md            *render.Markdown
	outputDir     string
	buildTime     time.Time
	includeDrafts bool
}

// Option customizes a Generator.
type Option func(*Generator)

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(g *Generator) {
		if r != nil {
			g.recorder = r
		}
	}
}

// WithBuildTime pins the generator-injected timestamp (feeds, manifest).
// Defaults to time.Now; tests pin it to verify reproducibility.
func WithBuildTime(t time.Time) Option {
	return func(g *Generator) { g.buildTime = t }
}

// WithDrafts includes draft posts in the output (preview builds).
func WithDrafts() Option {
	return func(g *Generator) { g.includeDrafts = true }
}

// WithOutputDir overrides the configured output directory.
func WithOutputDir(dir string) Option {
	return func(g *Generator) {
		if dir != "" {
			g.outputDir = dir
		}
	}
}

// New constructs a Generator.
func New(cfg *config.Config, opts ...Option) (*Generator, error) {
	layouts, err := render.NewLayouts()
	if err != nil {
		return nil, err
	}
	g := &Generator{
		cfg:       cfg,
		recorder:  metrics.NoopRecorder{},
		layouts:   layouts,
		md:        render.NewMarkdown(cfg.Markdown),
		outputDir: cfg.OutputDir,
		buildTime: time.Now(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// OutputDir returns the resolved output directory.
func (g *Generator) OutputDir() string { return g.outputDir }

// BuildState carries mutable state across stages.
type BuildState struct {
	Generator *Generator
	Corpus    *corpus.Corpus
	Posts     []*render.PostData // production posts, newest first
	Report    *BuildReport
	Recorder  metrics.Recorder
}

// Build runs the full stage pipeline and returns the report.
// The returned error is the first fatal StageError, if any.
func (g *Generator) Build(ctx context.Context) (*BuildReport, error) {
	report := newBuildReport(uuid.NewString(), g.buildTime)
	bs := &BuildState{Generator: g, Report: report, Recorder: g.recorder}

	slog.Info("Starting site build",
		logfields.BuildID(report.BuildID),
		logfields.Path(g.outputDir),
		slog.Bool("drafts", g.includeDrafts))

	start := time.Now()
	err := runStages(ctx, bs, []namedStage{
		{"prepare", stagePrepareOutput},
		{"load", stageLoadCorpus},
		{"render", stageRenderPosts},
		{"indexes", stageIndexes},
		{"taxonomies", stageTaxonomies},
		{"feeds", stageFeeds},
		{"assets", stageAssets},
		{"manifest", stageManifest},
	})
	report.Duration = time.Since(start)
	g.recorder.ObserveBuildDuration(report.Duration)
	g.recorder.IncBuildOutcome(report.Outcome)

	if err != nil {
		slog.Error("Site build failed", logfields.BuildID(report.BuildID), logfields.Error(err))
		return report, err
	}

	g.recorder.SetPostCount(report.PostCount)
	slog.Info("Site build complete",
		logfields.BuildID(report.BuildID),
		logfields.Hash(report.ContentHash),
		logfields.Count(report.PostCount),
		logfields.DurationMS(float64(report.Duration.Milliseconds())))
	return report, nil
}

func stagePrepareOutput(_ context.Context, bs *BuildState) error {
	out := bs.Generator.outputDir
	if err := os.RemoveAll(out); err != nil {
		return newFatalStageError("prepare", err)
	}
	for _, dir := range []string{"", "posts", "assets", "archive", "categories", "authors"} {
		if err := os.MkdirAll(filepath.Join(out, dir), 0o755); err != nil {
			return newFatalStageError("prepare", err)
		}
	}
	return nil
}

func stageLoadCorpus(_ context.Context, bs *BuildState) error {
	g := bs.Generator
	c, err := corpus.Load(g.cfg, corpus.LoadOptions{IncludeDrafts: g.includeDrafts})
	if err != nil {
		return newFatalStageError("load", err)
	}
	bs.Corpus = c
	bs.Report.PostCount = len(c.Posts)
	bs.Report.DraftCount = len(c.Drafts)

	hash, err := ComputeContentHash(c.Posts)
	if err != nil {
		return newFatalStageError("load", err)
	}
	bs.Report.ContentHash = hash
	return nil
}

func stageRenderPosts(ctx context.Context, bs *BuildState) error {
	g := bs.Generator

	for _, p := range bs.Corpus.Posts {
		pd, err := g.renderPost(p)
		if err != nil {
			return newFatalStageError("render", err)
		}
		bs.Posts = append(bs.Posts, pd)
	}
	if g.includeDrafts {
		for _, p := range bs.Corpus.Drafts {
			if _, err := g.renderPost(p); err != nil {
				return newFatalStageError("render", err)
			}
		}
	}
	return nil
}

// renderPost renders one post page to posts/<slug>/index.html and returns
// its template form for listing pages.
func (g *Generator) renderPost(p *post.Post) (*render.PostData, error) {
	content, err := g.md.ToHTML(p.Body)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", p.Path, err)
	}
	excerpt, err := g.md.ToHTML(p.ExcerptOrBody())
	if err != nil {
		return nil, fmt.Errorf("render excerpt %s: %w", p.Path, err)
	}

	pd := &render.PostData{
		Slug:       p.Slug,
		Title:      p.Title,
		Date:       p.Date,
		Authors:    p.Authors,
		Categories: p.Categories,
		Comments:   p.Comments,
		URL:        g.cfg.SiteURL + "/posts/" + p.Slug + "/",
		Excerpt:    excerpt,
		Truncated:  p.HasExcerpt(),
		Content:    content,
	}

	page := render.Page{
		Site:        render.SiteDataFrom(g.cfg),
		Title:       p.Title,
		Canonical:   pd.URL,
		Post:        pd,
		GeneratedAt: g.buildTime,
	}
	html, err := g.layouts.Execute(render.LayoutPost, page)
	if err != nil {
		return nil, err
	}
	if err := g.writeFile(filepath.Join("posts", p.Slug, "index.html"), html); err != nil {
		return nil, err
	}
	slog.Debug("Rendered post", logfields.Post(p.Slug), logfields.Path(p.Path))
	return pd, nil
}

func stageIndexes(_ context.Context, bs *BuildState) error {
	g := bs.Generator
	site := render.SiteDataFrom(g.cfg)

	index, err := g.layouts.Execute(render.LayoutIndex, render.Page{
		Site:        site,
		Canonical:   g.cfg.SiteURL + "/",
		Posts:       bs.Posts,
		GeneratedAt: g.buildTime,
	})
	if err != nil {
		return newFatalStageError("indexes", err)
	}
	if err := g.writeFile("index.html", index); err != nil {
		return newFatalStageError("indexes", err)
	}

	archive, err := g.layouts.Execute(render.LayoutListing, render.Page{
		Site:        site,
		Title:       "Archive",
		Canonical:   g.cfg.SiteURL + "/archive/",
		Heading:     "Archive",
		Posts:       bs.Posts,
		GeneratedAt: g.buildTime,
	})
	if err != nil {
		return newFatalStageError("indexes", err)
	}
	return g.writeFile(filepath.Join("archive", "index.html"), archive)
}

func stageTaxonomies(_ context.Context, bs *BuildState) error {
	g := bs.Generator

	if err := g.renderTaxonomy("categories", "Categories", "Category", bs.Corpus.CategoryNames(), bs.Corpus.Categories, bs.Posts); err != nil {
		return newFatalStageError("taxonomies", err)
	}
	if err := g.renderTaxonomy("authors", "Authors", "Posts by", bs.Corpus.AuthorIDs(), bs.Corpus.Authors, bs.Posts); err != nil {
		return newFatalStageError("taxonomies", err)
	}
	return nil
}

// renderTaxonomy writes the term overview page plus one listing page per term.
func (g *Generator) renderTaxonomy(dir, heading, termHeading string, names []string, groups map[string][]*post.Post, rendered []*render.PostData) error {
	site := render.SiteDataFrom(g.cfg)

	bySlug := make(map[string]*render.PostData, len(rendered))
	for _, pd := range rendered {
		bySlug[pd.Slug] = pd
	}

	var terms []render.TermData
	for _, name := range names {
		termSlug := post.Slugify(name)
		termURL := g.cfg.SiteURL + "/" + dir + "/" + termSlug + "/"
		terms = append(terms, render.TermData{Name: name, URL: termURL, Count: len(groups[name])})

		var posts []*render.PostData
		for _, p := range groups[name] {
			if pd, ok := bySlug[p.Slug]; ok {
				posts = append(posts, pd)
			}
		}

		page, err := g.layouts.Execute(render.LayoutListing, render.Page{
			Site:        site,
			Title:       name,
			Canonical:   termURL,
			Heading:     termHeading + ": " + name,
			Posts:       posts,
			GeneratedAt: g.buildTime,
		})
		if err != nil {
			return err
		}
		if err := g.writeFile(filepath.Join(dir, termSlug, "index.html"), page); err != nil {
			return err
		}
	}

	overview, err := g.layouts.Execute(render.LayoutTerms, render.Page{
		Site:        site,
		Title:       heading,
		Canonical:   g.cfg.SiteURL + "/" + dir + "/",
		Heading:     heading,
		Terms:       terms,
		GeneratedAt: g.buildTime,
	})
	if err != nil {
		return err
	}
	return g.writeFile(filepath.Join(dir, "index.html"), overview)
}

func stageFeeds(_ context.Context, bs *BuildState) error {
	g := bs.Generator

	meta := feed.Meta{
		Title:       g.cfg.SiteName,
		Link:        g.cfg.SiteURL,
		Description: g.cfg.SiteDescription,
		BuildTime:   g.buildTime,
	}
	entries := make([]feed.Entry, 0, len(bs.Posts))
	for _, pd := range bs.Posts {
		entries = append(entries, feed.Entry{
			Title:       pd.Title,
			Link:        pd.URL,
			Published:   pd.Date,
			SummaryHTML: string(pd.Excerpt),
			Authors:     pd.Authors,
			Categories:  pd.Categories,
		})
	}

	rss, err := feed.RSS(meta, entries)
	if err != nil {
		return newFatalStageError("feeds", err)
	}
	if err := g.writeFile("feed_rss.xml", rss); err != nil {
		return newFatalStageError("feeds", err)
	}

	atom, err := feed.Atom(meta, entries)
	if err != nil {
		return newFatalStageError("feeds", err)
	}
	return g.writeFile("feed_atom.xml", atom)
}

// stageAssets writes the theme stylesheet and copies non-Markdown files
// (images and attachments living next to posts) into the output tree.
func stageAssets(_ context.Context, bs *BuildState) error {
	g := bs.Generator

	if err := g.writeFile(filepath.Join("assets", "style.css"), render.ThemeCSS(g.cfg.Theme)); err != nil {
		return newFatalStageError("assets", err)
	}

	root := g.cfg.ContentDir
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".md" || ext == ".markdown" {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return g.writeFile(rel, data)
	})
	if err != nil {
		// Asset problems do not invalidate the rendered pages.
		return newWarnStageError("assets", err)
	}
	return nil
}

// manifestFile is one output file entry in the manifest.
type manifestFile struct {
	Path string `json:"path"`
	Hash string `json:"hash"`
}

// Manifest describes the generated tree. GeneratedAt is the only
// timestamp-bearing field.
type Manifest struct {
	BuildID     string         `json:"build_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	ContentHash string         `json:"content_hash"`
	PostCount   int            `json:"post_count"`
	Files       []manifestFile `json:"files"`
}

func stageManifest(_ context.Context, bs *BuildState) error {
	g := bs.Generator

	var files []manifestFile
	err := filepath.WalkDir(g.outputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(g.outputDir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		sum := sha256.Sum256(data)
		files = append(files, manifestFile{Path: filepath.ToSlash(rel), Hash: hex.EncodeToString(sum[:])})
		return nil
	})
	if err != nil {
		return newFatalStageError("manifest", err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	m := Manifest{
		BuildID:     bs.Report.BuildID,
		GeneratedAt: g.buildTime.UTC(),
		ContentHash: bs.Report.ContentHash,
		PostCount:   bs.Report.PostCount,
		Files:       files,
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return newFatalStageError("manifest", err)
	}
	return g.writeFile(ManifestName, append(data, '\n'))
}

// ReadManifest loads a previously written manifest from an output tree.
func ReadManifest(outputDir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(outputDir, ManifestName))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

func (g *Generator) writeFile(rel string, data []byte) error {
	path := filepath.Join(g.outputDir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
