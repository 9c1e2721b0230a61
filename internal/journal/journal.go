// Package journal records review transitions in a local SQLite
// database. The journal is additive only; review progress itself lives
// in the per-PR state file and is never reconstructed from here.
package journal

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Event is one recorded mark-reviewed transition.
type Event struct {
	ID         string
	PRKey      string
	Path       string
	Mode       string // "skim" or "deep"
	Lines      int
	SessionID  string // groups events from one interactive session; empty for one-shot reviews
	ReviewedAt time.Time
}

// Journal stores review events using modernc.org/sqlite (pure Go, no CGO).
type Journal struct {
	db *sql.DB
}

// Open opens (or creates) the journal database at the given path.
func Open(dbPath string) (*Journal, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	// SQLite only supports one concurrent writer; a single connection
	// serializes all access through Go's connection pool.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// NewSessionID generates a ULID for grouping one interactive session's events.
func NewSessionID() string {
	return newULID()
}

func newULID() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(entropy, 0)).String()
}

// Migrate runs all embedded SQL migration files in order.
func (j *Journal) Migrate(ctx context.Context) error {
	_, err := j.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, k int) bool {
		return entries[i].Name() < entries[k].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()

		var count int
		if err := j.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE filename = ?", name).Scan(&count); err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		sqlBytes, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := j.db.ExecContext(ctx, string(sqlBytes)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		if _, err := j.db.ExecContext(ctx, "INSERT INTO schema_migrations (filename) VALUES (?)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}
	return nil
}

// Append records one review event, assigning ID and ReviewedAt when unset.
func (j *Journal) Append(ctx context.Context, e *Event) error {
	if e.ID == "" {
		e.ID = newULID()
	}
	if e.ReviewedAt.IsZero() {
		e.ReviewedAt = time.Now().UTC()
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO review_events (id, pr_key, path, mode, lines, session_id, reviewed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.PRKey, e.Path, e.Mode, e.Lines, e.SessionID, e.ReviewedAt,
	)
	if err != nil {
		return fmt.Errorf("append review event: %w", err)
	}
	return nil
}

// List returns events for one PR, most recent first. A limit of 0
// returns everything.
func (j *Journal) List(ctx context.Context, prKey string, limit int) ([]*Event, error) {
	q := `SELECT id, pr_key, path, mode, lines, session_id, reviewed_at
		FROM review_events WHERE pr_key = ? ORDER BY reviewed_at DESC, id DESC`
	args := []any{prKey}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list review events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []*Event
	for rows.Next() {
		e := &Event{}
		if err := rows.Scan(&e.ID, &e.PRKey, &e.Path, &e.Mode, &e.Lines, &e.SessionID, &e.ReviewedAt); err != nil {
			return nil, fmt.Errorf("scan review event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list review events: %w", err)
	}
	return events, nil
}
