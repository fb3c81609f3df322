package render

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/inkpress/inkpress/internal/config"
)

// Page is the data handed to every layout.
type Page struct {
	Site        SiteData
	Title       string
	Canonical   string // absolute URL of this page
	Content     template.HTML
	Post        *PostData
	Posts       []*PostData // listing pages
	Terms       []TermData  // taxonomy overview pages
	Heading     string      // listing pages: category/author/archive heading
	GeneratedAt time.Time
}

// TermData is one taxonomy term (category or author) on an overview page.
type TermData struct {
	Name  string
	URL   string
	Count int
}

// SiteData is the site-wide template context derived from config.
type SiteData struct {
	Name        string
	URL         string
	Description string
	RepoURL     string
	Analytics   string
	Social      map[string]string
	Palette     []string
	SearchOn    bool
	SocialCards bool
}

// PostData is a rendered post in template form.
type PostData struct {
	Slug       string
	Title      string
	Date       time.Time
	Authors    []string
	Categories []string
	Comments   bool
	URL        string // absolute
	Excerpt    template.HTML
	Truncated  bool // an excerpt boundary was declared; show a read-more link
	Content    template.HTML
}

// SiteDataFrom builds the template site context from config.
func SiteDataFrom(cfg *config.Config) SiteData {
	return SiteData{
		Name:        cfg.SiteName,
		URL:         cfg.SiteURL,
		Description: cfg.SiteDescription,
		RepoURL:     cfg.RepoURL,
		Analytics:   cfg.Extra.Analytics,
		Social:      cfg.Extra.Social,
		Palette:     cfg.Theme.Palette,
		SearchOn:    cfg.HasPlugin("search"),
		SocialCards: cfg.HasPlugin("social"),
	}
}

// Layouts holds the parsed page templates.
type Layouts struct {
	tmpl *template.Template
}

// NewLayouts parses the built-in layout set.
func NewLayouts() (*Layouts, error) {
	tmpl := template.New("layouts").Funcs(template.FuncMap{
		"isodate": func(t time.Time) string { return t.Format("2006-01-02") },
		"rfcdate": func(t time.Time) string { return t.Format(time.RFC3339) },
	})
	for name, text := range builtinLayouts {
		if _, err := tmpl.New(name).Parse(text); err != nil {
			return nil, fmt.Errorf("parse layout %s: %w", name, err)
		}
	}
	return &Layouts{tmpl: tmpl}, nil
}

// Execute renders the named layout into a byte buffer.
func (l *Layouts) Execute(name string, page Page) ([]byte, error) {
	var buf bytes.Buffer
	if err := l.tmpl.ExecuteTemplate(&buf, name, page); err != nil {
		return nil, fmt.Errorf("execute layout %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Layout names.
const (
	LayoutPost    = "post"
	LayoutIndex   = "index"
	LayoutListing = "listing"
	LayoutTerms   = "terms"
)

var builtinLayouts = map[string]string{
	"base": `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{if .Title}}{{.Title}} - {{end}}{{.Site.Name}}</title>
{{if .Site.Description}}<meta name="description" content="{{.Site.Description}}">{{end}}
<link rel="canonical" href="{{.Canonical}}">
<link rel="stylesheet" href="{{.Site.URL}}/assets/style.css">
<link rel="alternate" type="application/rss+xml" title="{{.Site.Name}}" href="{{.Site.URL}}/feed_rss.xml">
<link rel="alternate" type="application/atom+xml" title="{{.Site.Name}}" href="{{.Site.URL}}/feed_atom.xml">
{{if .Site.Analytics}}<meta name="analytics-property" content="{{.Site.Analytics}}">{{end}}
</head>
<body data-palette="{{index .Site.Palette 0}}">
<header>
<nav>
<a class="site-name" href="{{.Site.URL}}/">{{.Site.Name}}</a>
<a href="{{.Site.URL}}/archive/">Archive</a>
<a href="{{.Site.URL}}/categories/">Categories</a>
{{if .Site.RepoURL}}<a href="{{.Site.RepoURL}}">Source</a>{{end}}
{{if .Site.SearchOn}}<input type="search" id="site-search" placeholder="Search">{{end}}
</nav>
</header>
<main>
{{block "main" .}}{{end}}
</main>
<footer>
{{range $name, $url := .Site.Social}}<a rel="me" href="{{$url}}">{{$name}}</a>
{{end}}</footer>
</body>
</html>
`,

	LayoutPost: `{{define "main"}}<article>
<h1>{{.Post.Title}}</h1>
<p class="meta"><time datetime="{{isodate .Post.Date}}">{{isodate .Post.Date}}</time>
{{range .Post.Authors}} <span class="author">{{.}}</span>{{end}}
{{range .Post.Categories}} <a class="category" href="{{$.Site.URL}}/categories/{{.}}/">{{.}}</a>{{end}}</p>
{{.Post.Content}}
</article>{{end}}{{template "base" .}}`,

	LayoutIndex: `{{define "main"}}{{range .Posts}}<article class="summary">
<h2><a href="{{.URL}}">{{.Title}}</a></h2>
<p class="meta"><time datetime="{{isodate .Date}}">{{isodate .Date}}</time></p>
{{.Excerpt}}
{{if .Truncated}}<p><a class="read-more" href="{{.URL}}">Read more</a></p>{{end}}
</article>
{{end}}{{end}}{{template "base" .}}`,

	LayoutListing: `{{define "main"}}<h1>{{.Heading}}</h1>
<ul class="post-list">
{{range .Posts}}<li><time datetime="{{isodate .Date}}">{{isodate .Date}}</time> <a href="{{.URL}}">{{.Title}}</a></li>
{{end}}</ul>{{end}}{{template "base" .}}`,

	LayoutTerms: `{{define "main"}}<h1>{{.Heading}}</h1>
<ul class="term-list">
{{range .Terms}}<li><a href="{{.URL}}">{{.Name}}</a> ({{.Count}})</li>
{{end}}</ul>{{end}}{{template "base" .}}`,
}

// ThemeCSS emits the small palette stylesheet for the configured theme.
func ThemeCSS(theme config.ThemeConfig) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "/* theme: %s */\n", theme.Name)
	for _, variant := range theme.Palette {
		fmt.Fprintf(&buf, "[data-palette=%q] { --palette: %s; }\n", variant, variant)
	}
	buf.WriteString("body { max-width: 46rem; margin: 0 auto; padding: 1rem; font-family: sans-serif; }\n")
	buf.WriteString("article.summary { margin-bottom: 2rem; }\n")
	buf.WriteString(".meta { color: #666; }\n")
	return buf.Bytes()
}
