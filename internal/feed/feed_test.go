package feed

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var buildTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testEntries() []Entry {
	return []Entry{
		{
			Title:       "Second post",
			Link:        "https://blog.example.org/posts/second/",
			Published:   time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC),
			SummaryHTML: "<p>The <em>newer</em> one.</p>",
			Authors:     []string{"jdoe"},
			Categories:  []string{"quarkus"},
		},
		{
			Title:       "First post",
			Link:        "https://blog.example.org/posts/first/",
			Published:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			SummaryHTML: "<p>The older one.</p>",
		},
	}
}

func testMeta() Meta {
	return Meta{
		Title:       "Example Blog",
		Link:        "https://blog.example.org",
		Description: "Notes on Quarkus and Java tooling",
		BuildTime:   buildTime,
	}
}

func TestRSS_OrderPreserved(t *testing.T) {
	out, err := RSS(testMeta(), testEntries())
	require.NoError(t, err)

	s := string(out)
	require.Less(t, strings.Index(s, "Second post"), strings.Index(s, "First post"),
		"2024-02-14 entry must precede 2024-01-02 entry")
}

func TestRSS_WellFormedAndComplete(t *testing.T) {
	out, err := RSS(testMeta(), testEntries())
	require.NoError(t, err)

	var doc struct {
		Channel struct {
			Title         string `xml:"title"`
			LastBuildDate string `xml:"lastBuildDate"`
			Items         []struct {
				Title       string   `xml:"title"`
				Link        string   `xml:"link"`
				PubDate     string   `xml:"pubDate"`
				Description string   `xml:"description"`
				Categories  []string `xml:"category"`
			} `xml:"item"`
		} `xml:"channel"`
	}
	require.NoError(t, xml.Unmarshal(out, &doc))

	require.Equal(t, "Example Blog", doc.Channel.Title)
	require.Len(t, doc.Channel.Items, 2)
	require.Equal(t, "https://blog.example.org/posts/second/", doc.Channel.Items[0].Link)

	// RSS descriptions carry plain text, not markup.
	require.Equal(t, "The newer one.", doc.Channel.Items[0].Description)
	require.Equal(t, []string{"quarkus"}, doc.Channel.Items[0].Categories)

	pub, err := time.Parse(time.RFC1123Z, doc.Channel.Items[0].PubDate)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC), pub.UTC())
}

func TestAtom_WellFormedAndComplete(t *testing.T) {
	out, err := Atom(testMeta(), testEntries())
	require.NoError(t, err)

	var doc struct {
		Title   string `xml:"title"`
		Updated string `xml:"updated"`
		Entries []struct {
			Title     string `xml:"title"`
			ID        string `xml:"id"`
			Published string `xml:"published"`
			Authors   []struct {
				Name string `xml:"name"`
			} `xml:"author"`
			Summary string `xml:"summary"`
		} `xml:"entry"`
	}
	require.NoError(t, xml.Unmarshal(out, &doc))

	require.Equal(t, "Example Blog", doc.Title)
	require.Equal(t, "2024-03-01T12:00:00Z", doc.Updated)
	require.Len(t, doc.Entries, 2)
	require.Equal(t, "Second post", doc.Entries[0].Title)
	require.Equal(t, "jdoe", doc.Entries[0].Authors[0].Name)
	require.Contains(t, doc.Entries[0].Summary, "newer")
}

func TestFeeds_DeterministicForFixedBuildTime(t *testing.T) {
	a1, err := Atom(testMeta(), testEntries())
	require.NoError(t, err)
	a2, err := Atom(testMeta(), testEntries())
	require.NoError(t, err)
	require.Equal(t, a1, a2)

	r1, err := RSS(testMeta(), testEntries())
	require.NoError(t, err)
	r2, err := RSS(testMeta(), testEntries())
	require.NoError(t, err)
	require.Equal(t, r1, r2)
}

func TestTextFromHTML(t *testing.T) {
	cases := map[string]string{
		"<p>Hello <em>world</em></p>":              "Hello world",
		"<p>One</p>\n<p>Two</p>":                   "One Two",
		"plain text":                               "plain text",
		"<pre><code>a = b</code></pre> afterwards": "a = b afterwards",
	}
	for in, want := range cases {
		require.Equal(t, want, TextFromHTML(in), "input %q", in)
	}
}
