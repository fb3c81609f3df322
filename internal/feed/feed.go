// Package feed generates the RSS 2.0 and Atom 1.0 syndication documents.
package feed

import (
	"encoding/xml"
	"fmt"
	"time"
)

// Entry is one syndicated post, already ordered and rendered by the caller.
type Entry struct {
	Title       string
	Link        string // absolute URL
	Published   time.Time
	SummaryHTML string // excerpt HTML; stripped to text for RSS descriptions
	Authors     []string
	Categories  []string
}

// Meta is the feed-level metadata.
type Meta struct {
	Title       string
	Link        string // site URL
	Description string
	BuildTime   time.Time // the only generator-injected timestamp in the output
}

type rssDoc struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	GUID        string   `xml:"guid"`
	PubDate     string   `xml:"pubDate"`
	Description string   `xml:"description"`
	Categories  []string `xml:"category,omitempty"`
}

// RSS renders the RSS 2.0 document. Entries must already be in reverse
// chronological order; the function preserves caller order.
func RSS(meta Meta, entries []Entry) ([]byte, error) {
	ch := rssChannel{
		Title:         meta.Title,
		Link:          meta.Link,
		Description:   meta.Description,
		LastBuildDate: meta.BuildTime.UTC().Format(time.RFC1123Z),
	}
	for _, e := range entries {
		ch.Items = append(ch.Items, rssItem{
			Title:       e.Title,
			Link:        e.Link,
			GUID:        e.Link,
			PubDate:     e.Published.UTC().Format(time.RFC1123Z),
			Description: TextFromHTML(e.SummaryHTML),
			Categories:  e.Categories,
		})
	}

	out, err := xml.MarshalIndent(rssDoc{Version: "2.0", Channel: ch}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal rss: %w", err)
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}

type atomDoc struct {
	XMLName xml.Name    `xml:"feed"`
	XMLNS   string      `xml:"xmlns,attr"`
	Title   string      `xml:"title"`
	ID      string      `xml:"id"`
	Updated string      `xml:"updated"`
	Links   []atomLink  `xml:"link"`
	Entries []atomEntry `xml:"entry"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr,omitempty"`
	Type string `xml:"type,attr,omitempty"`
}

type atomEntry struct {
	Title     string       `xml:"title"`
	ID        string       `xml:"id"`
	Updated   string       `xml:"updated"`
	Published string       `xml:"published"`
	Links     []atomLink   `xml:"link"`
	Authors   []atomPerson `xml:"author,omitempty"`
	Summary   atomText     `xml:"summary"`
}

type atomPerson struct {
	Name string `xml:"name"`
}

type atomText struct {
	Type string `xml:"type,attr"`
	Body string `xml:",chardata"`
}

// Atom renders the Atom 1.0 document, preserving caller order.
func Atom(meta Meta, entries []Entry) ([]byte, error) {
	doc := atomDoc{
		XMLNS:   "http://www.w3.org/2005/Atom",
		Title:   meta.Title,
		ID:      meta.Link + "/",
		Updated: meta.BuildTime.UTC().Format(time.RFC3339),
		Links: []atomLink{
			{Href: meta.Link + "/feed_atom.xml", Rel: "self", Type: "application/atom+xml"},
			{Href: meta.Link + "/", Rel: "alternate", Type: "text/html"},
		},
	}
	for _, e := range entries {
		ae := atomEntry{
			Title:     e.Title,
			ID:        e.Link,
			Published: e.Published.UTC().Format(time.RFC3339),
			Updated:   e.Published.UTC().Format(time.RFC3339),
			Links:     []atomLink{{Href: e.Link, Rel: "alternate", Type: "text/html"}},
			Summary:   atomText{Type: "html", Body: e.SummaryHTML},
		}
		for _, a := range e.Authors {
			ae.Authors = append(ae.Authors, atomPerson{Name: a})
		}
		doc.Entries = append(doc.Entries, ae)
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal atom: %w", err)
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}
