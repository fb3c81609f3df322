// Package corpus loads the content tree into an ordered, grouped set of
// posts ready for rendering.
package corpus

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/inkpress/inkpress/internal/config"
	ierrors "github.com/inkpress/inkpress/internal/errors"
	"github.com/inkpress/inkpress/internal/logfields"
	"github.com/inkpress/inkpress/internal/post"
)

// Corpus is the loaded content set for one build.
type Corpus struct {
	Posts      []*post.Post            // production posts, newest first
	Drafts     []*post.Post            // drafts, only retained when IncludeDrafts was set
	Categories map[string][]*post.Post // category -> posts, newest first
	Authors    map[string][]*post.Post // author id -> posts, newest first
}

// LoadOptions tunes corpus loading.
type LoadOptions struct {
	// IncludeDrafts keeps draft posts in Corpus.Drafts (preview builds).
	// Drafts never enter Corpus.Posts.
	IncludeDrafts bool
}

// Load walks cfg.ContentDir/<blog_dir> for Markdown posts, parses and
// validates each, and returns the ordered corpus.
//
// Validation is fail-fast: the first malformed post aborts the load with an
// error naming the file. A published post without an excerpt marker fails
// the load when the blog plugin declares post_excerpt: required.
func Load(cfg *config.Config, opts LoadOptions) (*Corpus, error) {
	root := filepath.Join(cfg.ContentDir, cfg.BlogDir())
	if _, err := os.Stat(root); err != nil {
		return nil, ierrors.OutputError("stat content dir", err).WithContext("path", root)
	}

	requireExcerpt := cfg.ExcerptPolicy() == config.ExcerptRequired

	c := &Corpus{
		Categories: make(map[string][]*post.Post),
		Authors:    make(map[string][]*post.Post),
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isMarkdown(path) {
			return nil
		}

		rel, err := filepath.Rel(cfg.ContentDir, path)
		if err != nil {
			return err
		}

		p, err := post.ParseFile(cfg.ContentDir, rel)
		if err != nil {
			return err
		}

		if p.Draft {
			slog.Debug("Excluding draft post", logfields.Post(p.Slug), logfields.Path(rel))
			if opts.IncludeDrafts {
				c.Drafts = append(c.Drafts, p)
			}
			return nil
		}

		if requireExcerpt && !p.HasExcerpt() {
			return ierrors.ExcerptMarkerMissing(rel)
		}

		c.Posts = append(c.Posts, p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortPosts(c.Posts)
	sortPosts(c.Drafts)

	for _, p := range c.Posts {
		for _, cat := range p.Categories {
			c.Categories[cat] = append(c.Categories[cat], p)
		}
		for _, a := range p.Authors {
			c.Authors[a] = append(c.Authors[a], p)
		}
	}

	slog.Info("Corpus loaded",
		logfields.Count(len(c.Posts)),
		slog.Int("drafts", len(c.Drafts)),
		slog.Int("categories", len(c.Categories)))
	return c, nil
}

// CategoryNames returns category names sorted alphabetically for stable
// taxonomy output.
func (c *Corpus) CategoryNames() []string {
	names := make([]string, 0, len(c.Categories))
	for name := range c.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AuthorIDs returns author identifiers sorted alphabetically.
func (c *Corpus) AuthorIDs() []string {
	ids := make([]string, 0, len(c.Authors))
	for id := range c.Authors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// sortPosts orders newest first; ties broken by slug so rebuilds are
// deterministic.
func sortPosts(posts []*post.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].Date.Equal(posts[j].Date) {
			return posts[i].Date.After(posts[j].Date)
		}
		return posts[i].Slug < posts[j].Slug
	})
}

func isMarkdown(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".markdown"
}
