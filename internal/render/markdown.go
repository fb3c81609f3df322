// Package render turns Markdown post bodies into HTML pages using goldmark
// and html/template layouts.
package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/inkpress/inkpress/internal/config"
)

// Markdown wraps a configured goldmark engine.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown builds the engine from the configured extension list.
// config.Normalize guarantees only known extension names reach this point.
func NewMarkdown(cfg config.MarkdownConfig) *Markdown {
	var exts []goldmark.Extender
	var parserOpts []parser.Option
	for _, name := range cfg.Extensions {
		switch name {
		case "gfm":
			exts = append(exts, extension.GFM)
		case "footnote":
			exts = append(exts, extension.Footnote)
		case "typographer":
			exts = append(exts, extension.Typographer)
		case "attributes":
			parserOpts = append(parserOpts, parser.WithAttribute())
		}
	}

	md := goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(parserOpts...),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)
	return &Markdown{md: md}
}

// ToHTML renders a Markdown fragment to trusted template HTML.
//
// WithUnsafe is deliberate: the corpus is hand-authored content from the
// site's own repository, and posts embed raw HTML (the excerpt marker
// convention comes from the same comment syntax).
func (m *Markdown) ToHTML(src []byte) (template.HTML, error) {
	var buf bytes.Buffer
	if err := m.md.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}
