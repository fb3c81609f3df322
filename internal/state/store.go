// Package state persists the build ledger: one row per build with its
// content hash and publish status, backing the publish idempotency check.
package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNoBuilds indicates the ledger is empty.
var ErrNoBuilds = errors.New("no builds recorded")

// Build is one ledger row.
type Build struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time
	ContentHash string
	Outcome     string
	PostCount   int
	Published   bool
}

// Store is the SQLite-backed build ledger.
// Use ":memory:" for an in-memory database, or a file path for persistence.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (and initializes) the ledger database.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL,
		content_hash TEXT NOT NULL,
		outcome TEXT NOT NULL,
		post_count INTEGER NOT NULL,
		published INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_builds_hash ON builds(content_hash);
	CREATE INDEX IF NOT EXISTS idx_builds_finished ON builds(finished_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Record inserts a finished build.
func (s *Store) Record(ctx context.Context, b Build) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO builds (id, started_at, finished_at, content_hash, outcome, post_count, published) VALUES (?, ?, ?, ?, ?, ?, ?)",
		b.ID, b.StartedAt.Unix(), b.FinishedAt.Unix(), b.ContentHash, b.Outcome, b.PostCount, boolToInt(b.Published),
	)
	if err != nil {
		return fmt.Errorf("insert build: %w", err)
	}
	return nil
}

// MarkPublished flags a recorded build as published.
func (s *Store) MarkPublished(ctx context.Context, buildID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "UPDATE builds SET published = 1 WHERE id = ?", buildID)
	if err != nil {
		return fmt.Errorf("mark published: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("build %s not recorded", buildID)
	}
	return nil
}

// Latest returns the most recently finished build.
func (s *Store) Latest(ctx context.Context) (*Build, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, started_at, finished_at, content_hash, outcome, post_count, published FROM builds ORDER BY finished_at DESC, id DESC LIMIT 1")
	return scanBuild(row)
}

// IsHashPublished reports whether a successful, published build with this
// content hash already exists.
func (s *Store) IsHashPublished(ctx context.Context, contentHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM builds WHERE content_hash = ? AND published = 1 AND outcome = 'success'",
		contentHash,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query published hash: %w", err)
	}
	return n > 0, nil
}

// History returns up to limit builds, newest first.
func (s *Store) History(ctx context.Context, limit int) ([]Build, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, started_at, finished_at, content_hash, outcome, post_count, published FROM builds ORDER BY finished_at DESC, id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	var builds []Build
	for rows.Next() {
		var b Build
		var started, finished, published int64
		if err := rows.Scan(&b.ID, &started, &finished, &b.ContentHash, &b.Outcome, &b.PostCount, &published); err != nil {
			return nil, fmt.Errorf("scan build: %w", err)
		}
		b.StartedAt = time.Unix(started, 0).UTC()
		b.FinishedAt = time.Unix(finished, 0).UTC()
		b.Published = published != 0
		builds = append(builds, b)
	}
	return builds, rows.Err()
}

func scanBuild(row *sql.Row) (*Build, error) {
	var b Build
	var started, finished, published int64
	err := row.Scan(&b.ID, &started, &finished, &b.ContentHash, &b.Outcome, &b.PostCount, &published)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoBuilds
	}
	if err != nil {
		return nil, fmt.Errorf("scan build: %w", err)
	}
	b.StartedAt = time.Unix(started, 0).UTC()
	b.FinishedAt = time.Unix(finished, 0).UTC()
	b.Published = published != 0
	return &b, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
