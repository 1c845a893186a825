// Package db opens the SQLite store behind the local comments service:
// comment threads keyed by target, and the moderator API keys.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultBusyTimeout is how long a write waits for a concurrent writer
// before failing with SQLITE_BUSY.
const DefaultBusyTimeout = 5 * time.Second

// DefaultPath returns where the comments service keeps its threads when no
// db_path is configured: ~/.pagecomments/comments.db
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".pagecomments", "comments.db"), nil
}

type options struct {
	busyTimeout time.Duration
}

// Option configures Open.
type Option func(*options)

// WithBusyTimeout sets how long a comment insert or key change waits on a
// locked database. The API server and the moderation CLI write to the same
// file, so zero makes their writes fail as soon as they overlap.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) { o.busyTimeout = d }
}

// Open opens (or creates) the comments database at path and brings its
// schema up to date. The journal runs in WAL mode so thread reads from the
// API do not block on a submission being written.
func Open(path string, opts ...Option) (*sql.DB, error) {
	o := options{busyTimeout: DefaultBusyTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite3", dsn(path, o))
	if err != nil {
		return nil, fmt.Errorf("opening comments database: %w", err)
	}

	// Ping forces the first connection so a bad path or pragma fails here.
	if err := db.Ping(); err != nil {
		return nil, closeOnErr(db, fmt.Errorf("connecting to comments database: %w", err))
	}

	if err := migrate(db); err != nil {
		return nil, closeOnErr(db, fmt.Errorf("running migrations: %w", err))
	}

	return db, nil
}

// dsn carries the pragmas as go-sqlite3 connection parameters so every
// pooled connection gets them, not just the first.
func dsn(path string, o options) string {
	return fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d", path, o.busyTimeout.Milliseconds())
}

func closeOnErr(db *sql.DB, err error) error {
	if closeErr := db.Close(); closeErr != nil {
		return fmt.Errorf("%w (also failed to close: %v)", err, closeErr)
	}
	return err
}
