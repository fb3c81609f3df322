package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/inkpress/inkpress/internal/config"
)

func defaultMarkdown() *Markdown {
	return NewMarkdown(config.MarkdownConfig{Extensions: []string{"gfm", "footnote", "typographer"}})
}

func TestToHTML_BasicMarkdown(t *testing.T) {
	html, err := defaultMarkdown().ToHTML([]byte("# Heading\n\nSome *emphasis*.\n"))
	require.NoError(t, err)
	require.Contains(t, string(html), "<h1>Heading</h1>")
	require.Contains(t, string(html), "<em>emphasis</em>")
}

func TestToHTML_GFMTables(t *testing.T) {
	src := "| a | b |\n|---|---|\n| 1 | 2 |\n"
	html, err := defaultMarkdown().ToHTML([]byte(src))
	require.NoError(t, err)
	require.Contains(t, string(html), "<table>")
}

func TestToHTML_RawHTMLPreserved(t *testing.T) {
	html, err := defaultMarkdown().ToHTML([]byte("before\n\n<div class=\"note\">hi</div>\n"))
	require.NoError(t, err)
	require.Contains(t, string(html), `<div class="note">`)
}

func TestToHTML_CodeFencesAreContent(t *testing.T) {
	src := "```java\n@ApplicationScoped\npublic class Greeter {}\n```\n"
	html, err := defaultMarkdown().ToHTML([]byte(src))
	require.NoError(t, err)
	require.Contains(t, string(html), "language-java")
	require.Contains(t, string(html), "@ApplicationScoped")
}

func testPage() Page {
	return Page{
		Site: SiteData{
			Name:    "Example Blog",
			URL:     "https://blog.example.org",
			Palette: []string{"teal", "slate"},
			Social:  map[string]string{"mastodon": "https://fosstodon.org/@jdoe"},
		},
		Title:     "Hello",
		Canonical: "https://blog.example.org/posts/hello/",
		Post: &PostData{
			Slug:       "hello",
			Title:      "Hello",
			Date:       time.Date(2024, 2, 12, 0, 0, 0, 0, time.UTC),
			Authors:    []string{"jdoe"},
			Categories: []string{"quarkus"},
			URL:        "https://blog.example.org/posts/hello/",
			Content:    "<p>Body</p>",
		},
	}
}

func TestLayouts_PostPage(t *testing.T) {
	layouts, err := NewLayouts()
	require.NoError(t, err)

	out, err := layouts.Execute(LayoutPost, testPage())
	require.NoError(t, err)

	s := string(out)
	require.Contains(t, s, "<h1>Hello</h1>")
	require.Contains(t, s, `datetime="2024-02-12"`)
	require.Contains(t, s, `href="https://blog.example.org/categories/quarkus/"`)
	require.Contains(t, s, `rel="canonical" href="https://blog.example.org/posts/hello/"`)
	require.Contains(t, s, "feed_rss.xml")
	require.Contains(t, s, "fosstodon.org")
}

func TestLayouts_IndexShowsReadMoreOnlyWhenTruncated(t *testing.T) {
	layouts, err := NewLayouts()
	require.NoError(t, err)

	page := testPage()
	page.Post = nil
	page.Posts = []*PostData{
		{Title: "Truncated", URL: "https://blog.example.org/posts/a/", Date: time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC), Excerpt: "<p>Short</p>", Truncated: true},
		{Title: "Whole", URL: "https://blog.example.org/posts/b/", Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Excerpt: "<p>All of it</p>"},
	}

	out, err := layouts.Execute(LayoutIndex, page)
	require.NoError(t, err)

	s := string(out)
	require.Equal(t, 1, strings.Count(s, "read-more"))
	require.Less(t, strings.Index(s, "Truncated"), strings.Index(s, "Whole"), "order preserved")
}

func TestLayouts_ListingPage(t *testing.T) {
	layouts, err := NewLayouts()
	require.NoError(t, err)

	page := testPage()
	page.Post = nil
	page.Heading = "Category: quarkus"
	page.Posts = []*PostData{{Title: "One", URL: "u", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}}

	out, err := layouts.Execute(LayoutListing, page)
	require.NoError(t, err)
	require.Contains(t, string(out), "<h1>Category: quarkus</h1>")
}

func TestThemeCSS_EmitsPaletteVariants(t *testing.T) {
	css := ThemeCSS(config.ThemeConfig{Name: "plain", Palette: []string{"teal", "slate"}})
	require.Contains(t, string(css), "theme: plain")
	require.Contains(t, string(css), `"teal"`)
	require.Contains(t, string(css), `"slate"`)
}

func TestSiteDataFrom(t *testing.T) {
	cfg := &config.Config{
		SiteName: "Example Blog",
		SiteURL:  "https://blog.example.org",
		Theme:    config.ThemeConfig{Palette: []string{"teal"}},
		Plugins:  []config.PluginConfig{{Name: "search"}},
		Extra:    config.ExtraConfig{Analytics: "G-123"},
	}
	sd := SiteDataFrom(cfg)
	require.True(t, sd.SearchOn)
	require.False(t, sd.SocialCards)
	require.Equal(t, "G-123", sd.Analytics)
}
