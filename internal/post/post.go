// Package post models a single blog post: typed front matter, body, and the
// excerpt boundary.
package post

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	ierrors "github.com/inkpress/inkpress/internal/errors"
	"github.com/inkpress/inkpress/internal/frontmatter"
)

// ExcerptMarker is the in-body boundary after which content never appears in
// summary views.
const ExcerptMarker = "<!-- more -->"

// DateLayout is the accepted front-matter date format.
const DateLayout = "2006-01-02"

// Meta is the typed front matter of a post.
type Meta struct {
	Title      string   `yaml:"title"`
	Date       string   `yaml:"date"`
	Draft      bool     `yaml:"draft,omitempty"`
	Authors    []string `yaml:"authors,omitempty"`
	Categories []string `yaml:"categories,omitempty"`
	Comments   *bool    `yaml:"comments,omitempty"`
	Slug       string   `yaml:"slug,omitempty"`
}

// Post is a fully parsed content document.
type Post struct {
	Path       string // source path, relative to the content dir
	Slug       string
	Title      string
	Date       time.Time
	Draft      bool
	Authors    []string
	Categories []string
	Comments   bool
	Body       []byte // full Markdown body, marker removed
	Excerpt    []byte // Markdown strictly before the marker; nil when absent
}

// HasExcerpt reports whether the author declared an excerpt boundary.
func (p *Post) HasExcerpt() bool { return p.Excerpt != nil }

// ExcerptOrBody returns the summary source: the excerpt when declared,
// otherwise the full body.
func (p *Post) ExcerptOrBody() []byte {
	if p.HasExcerpt() {
		return p.Excerpt
	}
	return p.Body
}

// Parse builds a Post from raw file content.
//
// relPath is the path relative to the content directory; it provides the
// default slug (file stem) and appears in every error.
func Parse(relPath string, content []byte) (*Post, error) {
	rawMeta, body, had, _, err := frontmatter.Split(content)
	if err != nil {
		return nil, ierrors.FrontMatterInvalid(relPath, err)
	}
	if !had {
		return nil, ierrors.New(ierrors.CategoryContent, ierrors.SeverityFatal, "post has no front matter").
			WithContext("path", relPath)
	}

	var meta Meta
	if err := frontmatter.Decode(rawMeta, &meta); err != nil {
		return nil, ierrors.FrontMatterInvalid(relPath, err)
	}

	if strings.TrimSpace(meta.Title) == "" {
		return nil, ierrors.FrontMatterMissingField(relPath, "title")
	}
	if strings.TrimSpace(meta.Date) == "" {
		return nil, ierrors.FrontMatterMissingField(relPath, "date")
	}
	date, err := time.Parse(DateLayout, meta.Date)
	if err != nil {
		return nil, ierrors.ValidationFailed("date", fmt.Sprintf("%q is not a valid ISO date", meta.Date)).
			WithContext("path", relPath)
	}

	slug := meta.Slug
	if slug == "" {
		stem := strings.TrimSuffix(filepath.Base(relPath), filepath.Ext(relPath))
		slug = Slugify(stem)
	} else {
		slug = Slugify(slug)
	}

	excerpt, fullBody := splitExcerpt(body)

	comments := false
	if meta.Comments != nil {
		comments = *meta.Comments
	}

	return &Post{
		Path:       relPath,
		Slug:       slug,
		Title:      meta.Title,
		Date:       date,
		Draft:      meta.Draft,
		Authors:    meta.Authors,
		Categories: meta.Categories,
		Comments:   comments,
		Body:       fullBody,
		Excerpt:    excerpt,
	}, nil
}

// ParseFile reads and parses a post from disk.
func ParseFile(contentDir, relPath string) (*Post, error) {
	data, err := os.ReadFile(filepath.Join(contentDir, relPath))
	if err != nil {
		return nil, ierrors.OutputError("read post", err).WithContext("path", relPath)
	}
	return Parse(relPath, data)
}

// splitExcerpt locates the excerpt marker. The returned body has the marker
// line removed; the excerpt is everything strictly before it.
func splitExcerpt(body []byte) (excerpt, full []byte) {
	idx := bytes.Index(body, []byte(ExcerptMarker))
	if idx < 0 {
		return nil, body
	}

	excerpt = bytes.TrimRight(body[:idx], " \t\r\n")

	rest := body[idx+len(ExcerptMarker):]
	rest = bytes.TrimLeft(rest, "\r\n")

	full = make([]byte, 0, len(excerpt)+2+len(rest))
	full = append(full, excerpt...)
	if len(rest) > 0 {
		full = append(full, '\n', '\n')
		full = append(full, rest...)
	}
	return excerpt, full
}
