package post

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const samplePost = `---
title: Reactive messaging in five minutes
date: 2024-02-12
authors: [jdoe]
categories: [quarkus, messaging]
---
First paragraph.

Second paragraph.

<!-- more -->

Rest of the article.
`

func TestParse_FullFrontMatter(t *testing.T) {
	p, err := Parse("posts/2024/reactive-messaging.md", []byte(samplePost))
	require.NoError(t, err)

	require.Equal(t, "Reactive messaging in five minutes", p.Title)
	require.Equal(t, time.Date(2024, 2, 12, 0, 0, 0, 0, time.UTC), p.Date)
	require.False(t, p.Draft)
	require.Equal(t, []string{"jdoe"}, p.Authors)
	require.Equal(t, []string{"quarkus", "messaging"}, p.Categories)
	require.Equal(t, "reactive-messaging", p.Slug)
}

func TestParse_ExcerptStopsAtMarker(t *testing.T) {
	p, err := Parse("posts/a.md", []byte(samplePost))
	require.NoError(t, err)

	require.True(t, p.HasExcerpt())
	require.Equal(t, "First paragraph.\n\nSecond paragraph.", string(p.Excerpt))
	require.NotContains(t, string(p.Excerpt), "Rest of the article")
	require.Contains(t, string(p.Body), "Rest of the article")
	require.NotContains(t, string(p.Body), ExcerptMarker)
}

func TestParse_NoMarker_NoExcerpt(t *testing.T) {
	p, err := Parse("posts/a.md", []byte("---\ntitle: T\ndate: 2024-01-02\n---\nBody only.\n"))
	require.NoError(t, err)
	require.False(t, p.HasExcerpt())
	require.Equal(t, p.Body, p.ExcerptOrBody())
}

func TestParse_MissingTitle_Fails(t *testing.T) {
	_, err := Parse("posts/a.md", []byte("---\ndate: 2024-01-02\n---\nBody\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "required front matter field missing")
}

func TestParse_MissingDate_Fails(t *testing.T) {
	_, err := Parse("posts/a.md", []byte("---\ntitle: T\n---\nBody\n"))
	require.Error(t, err)
}

func TestParse_BadDate_Fails(t *testing.T) {
	_, err := Parse("posts/a.md", []byte("---\ntitle: T\ndate: 12.02.2024\n---\nBody\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "validation")
}

func TestParse_NoFrontMatter_Fails(t *testing.T) {
	_, err := Parse("posts/a.md", []byte("# Just a heading\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "no front matter")
}

func TestParse_InvalidYAML_Fails(t *testing.T) {
	_, err := Parse("posts/a.md", []byte("---\ntitle: [unclosed\ndate: 2024-01-02\n---\nBody\n"))
	require.Error(t, err)
}

func TestParse_DraftAndComments(t *testing.T) {
	p, err := Parse("posts/a.md", []byte("---\ntitle: T\ndate: 2024-01-02\ndraft: true\ncomments: true\n---\nBody\n"))
	require.NoError(t, err)
	require.True(t, p.Draft)
	require.True(t, p.Comments)
}

func TestParse_SlugOverride(t *testing.T) {
	p, err := Parse("posts/2024-02-12-some-file.md", []byte("---\ntitle: T\ndate: 2024-01-02\nslug: Custom Slug Here\n---\nBody\n"))
	require.NoError(t, err)
	require.Equal(t, "custom-slug-here", p.Slug)
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello, World!":        "hello-world",
		"Café Déployé":         "cafe-deploye",
		"  spaces   galore  ":  "spaces-galore",
		"Quarkus 3.8 — LTS":    "quarkus-3-8-lts",
		"already-a-slug":       "already-a-slug",
		"UPPER_case_andNumb3r": "upper-case-andnumb3r",
	}
	for in, want := range cases {
		require.Equal(t, want, Slugify(in), "input %q", in)
	}
}
