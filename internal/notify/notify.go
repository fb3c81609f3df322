// Package notify broadcasts publish events over NATS. Announcements are
// best-effort: subscribers learn about new builds, but a down broker never
// blocks a publish.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	appcfg "github.com/inkpress/inkpress/internal/config"
)

// Announcement is the event payload published after a successful site publish.
type Announcement struct {
	BuildID     string    `json:"build_id"`
	ContentHash string    `json:"content_hash"`
	SiteURL     string    `json:"site_url"`
	PostCount   int       `json:"post_count"`
	PublishedAt time.Time `json:"published_at"`
}

// NATSAnnouncer publishes announcements to a configured subject.
type NATSAnnouncer struct {
	cfg *appcfg.AnnounceConfig
}

// NewNATSAnnouncer constructs an announcer; the connection is established
// per announcement so the daemon never holds a long-lived broker connection.
func NewNATSAnnouncer(cfg *appcfg.AnnounceConfig) *NATSAnnouncer {
	return &NATSAnnouncer{cfg: cfg}
}

// Announce publishes the event and flushes before disconnecting.
func (a *NATSAnnouncer) Announce(ctx context.Context, event Announcement) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal announcement: %w", err)
	}

	nc, err := nats.Connect(a.cfg.URL,
		nats.Name("inkpress"),
		nats.Timeout(5*time.Second),
		nats.RetryOnFailedConnect(false),
	)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", a.cfg.URL, err)
	}
	defer nc.Close()

	if err := nc.Publish(a.cfg.Subject, payload); err != nil {
		return fmt.Errorf("publish to %s: %w", a.cfg.Subject, err)
	}
	if err := nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	slog.Debug("Publish announced",
		slog.String("subject", a.cfg.Subject),
		slog.String("build_id", event.BuildID))
	return nil
}
