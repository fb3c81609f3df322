package publish

import (
	"context"
	"log/slog"
	"time"

	appcfg "github.com/inkpress/inkpress/internal/config"
	ierrors "github.com/inkpress/inkpress/internal/errors"
	"github.com/inkpress/inkpress/internal/logfields"
	"github.com/inkpress/inkpress/internal/metrics"
	"github.com/inkpress/inkpress/internal/notify"
	"github.com/inkpress/inkpress/internal/site"
	"github.com/inkpress/inkpress/internal/state"
)

// PagesDestination pushes the output tree to a git branch.
type PagesDestination interface {
	Publish(ctx context.Context, outputDir, message string) error
}

// BucketDestination mirrors the output tree into object storage.
type BucketDestination interface {
	Sync(ctx context.Context, outputDir string) error
}

// Announcer broadcasts a publish event. Announce failures are logged as
// warnings and never fail the publish.
type Announcer interface {
	Announce(ctx context.Context, event notify.Announcement) error
}

// Publisher runs the fail-fast publish sequence: pages branch, then bucket,
// then ledger update, then announcement.
type Publisher struct {
	cfg       *appcfg.Config
	ledger    *state.Store
	pages     PagesDestination
	bucket    BucketDestination
	announcer Announcer
	recorder  metrics.Recorder
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithPages overrides the pages destination.
func WithPages(d PagesDestination) Option { return func(p *Publisher) { p.pages = d } }

// WithBucket overrides the bucket destination.
func WithBucket(d BucketDestination) Option { return func(p *Publisher) { p.bucket = d } }

// WithAnnouncer overrides the announcer.
func WithAnnouncer(a Announcer) Option { return func(p *Publisher) { p.announcer = a } }

// WithLedger attaches the build ledger for idempotency and publish tracking.
func WithLedger(s *state.Store) Option { return func(p *Publisher) { p.ledger = s } }

// WithRecorder attaches a metrics recorder.
func WithRecorder(r metrics.Recorder) Option { return func(p *Publisher) { p.recorder = r } }

// New wires the destinations declared in the publish configuration.
func New(cfg *appcfg.Config, opts ...Option) *Publisher {
	p := &Publisher{cfg: cfg, recorder: metrics.NoopRecorder{}}
	if pc := cfg.Publish.Pages; pc != nil {
		p.pages = NewPagesPublisher(pc)
	}
	if bc := cfg.Publish.Bucket; bc != nil {
		p.bucket = NewBucketSyncer(bc)
	}
	if ac := cfg.Publish.Announce; ac != nil {
		p.announcer = notify.NewNATSAnnouncer(ac)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run publishes the build in outputDir. A content hash that was already
// published is skipped; a failed build is refused outright.
func (p *Publisher) Run(ctx context.Context, outputDir string, report *site.BuildReport) error {
	if report.Outcome != "success" {
		return ierrors.ValidationFailed("build outcome",
			"refusing to publish a build that did not succeed: "+report.Outcome)
	}
	if p.pages == nil && p.bucket == nil {
		return ierrors.ConfigRequired("publish.pages or publish.bucket")
	}

	if p.ledger != nil {
		published, err := p.ledger.IsHashPublished(ctx, report.ContentHash)
		if err != nil {
			return ierrors.InternalError("query build ledger", err)
		}
		if published {
			slog.Info("Content already published, skipping",
				logfields.Hash(report.ContentHash))
			if p.pages != nil {
				p.recorder.IncPublishOutcome("pages", "skipped")
			}
			if p.bucket != nil {
				p.recorder.IncPublishOutcome("bucket", "skipped")
			}
			return nil
		}
	}

	message := "site build " + report.BuildID + " (" + shortHash(report.ContentHash) + ")"

	if p.pages != nil {
		if err := p.pages.Publish(ctx, outputDir, message); err != nil {
			p.recorder.IncPublishOutcome("pages", "failed")
			return err
		}
		p.recorder.IncPublishOutcome("pages", "success")
	}
	if p.bucket != nil {
		if err := p.bucket.Sync(ctx, outputDir); err != nil {
			p.recorder.IncPublishOutcome("bucket", "failed")
			return err
		}
		p.recorder.IncPublishOutcome("bucket", "success")
	}

	if p.ledger != nil {
		if err := p.ledger.MarkPublished(ctx, report.BuildID); err != nil {
			return ierrors.InternalError("update build ledger", err)
		}
	}

	if p.announcer != nil {
		event := notify.Announcement{
			BuildID:     report.BuildID,
			ContentHash: report.ContentHash,
			SiteURL:     p.cfg.SiteURL,
			PostCount:   report.PostCount,
			PublishedAt: time.Now().UTC(),
		}
		if err := p.announcer.Announce(ctx, event); err != nil {
			slog.Warn("Publish announcement failed", logfields.Error(err))
		}
	}

	slog.Info("Publish complete",
		logfields.BuildID(report.BuildID),
		logfields.Hash(report.ContentHash),
		logfields.Count(report.PostCount))
	return nil
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
