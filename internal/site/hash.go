package site

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/inkpress/inkpress/internal/post"
)

// corpusEntry is the hashed view of one source post.
type corpusEntry struct {
	Path        string   `json:"path"`
	Slug        string   `json:"slug"`
	Date        string   `json:"date"`
	ContentHash string   `json:"content_hash"`
	Categories  []string `json:"categories,omitempty"`
	Authors     []string `json:"authors,omitempty"`
}

// ComputeContentHash computes a deterministic hash over the published corpus.
// Rebuilding an unchanged corpus yields the same hash, which drives the
// publish idempotency check and the reproducibility verification.
func ComputeContentHash(posts []*post.Post) (string, error) {
	if len(posts) == 0 {
		h := sha256.Sum256([]byte("empty-corpus"))
		return hex.EncodeToString(h[:]), nil
	}

	entries := make([]corpusEntry, 0, len(posts))
	for _, p := range posts {
		bodyHash := sha256.Sum256(p.Body)
		entries = append(entries, corpusEntry{
			Path:        p.Path,
			Slug:        p.Slug,
			Date:        p.Date.Format(post.DateLayout),
			ContentHash: hex.EncodeToString(bodyHash[:]),
			Categories:  p.Categories,
			Authors:     p.Authors,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

	data, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("marshal corpus entries: %w", err)
	}
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:]), nil
}
