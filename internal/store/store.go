// Package store persists categorized window events in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/mfocus/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Store is a SQLite-backed sink for categorized events.
type Store struct {
	db *sql.DB
}

// DefaultPath returns $XDG_DATA_HOME/mfocus/events.db, falling back to
// ~/.local/share/mfocus/events.db.
func DefaultPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "mfocus", "events.db")
}

// Open opens or creates the database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening store db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveEvents appends events in a single transaction. On error nothing is written.
func (s *Store) SaveEvents(ctx context.Context, events []model.CategorizedEvent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO categorized_events
		(user_id, session_id, timestamp, app, title, category, duration_seconds, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, ev := range events {
		_, err := stmt.ExecContext(ctx,
			ev.UserID, ev.SessionID, ev.Timestamp.UTC().Format(time.RFC3339Nano),
			ev.App, ev.Title, string(ev.Category), ev.DurationSeconds, now,
		)
		if err != nil {
			return fmt.Errorf("inserting event: %w", err)
		}
	}

	return tx.Commit()
}

// ListEvents returns stored events, newest first. An empty sessionID matches
// every session; limit <= 0 means no limit.
func (s *Store) ListEvents(ctx context.Context, sessionID string, limit int) ([]model.CategorizedEvent, error) {
	query := `SELECT user_id, session_id, timestamp, app, title, category, duration_seconds
		FROM categorized_events`
	var args []any
	if sessionID != "" {
		query += " WHERE session_id = ?"
		args = append(args, sessionID)
	}
	query += " ORDER BY timestamp DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var events []model.CategorizedEvent
	for rows.Next() {
		var ev model.CategorizedEvent
		var ts, cat string
		if err := rows.Scan(&ev.UserID, &ev.SessionID, &ts, &ev.App, &ev.Title, &cat, &ev.DurationSeconds); err != nil {
			return nil, err
		}
		ev.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		ev.Category = model.Category(cat)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// CategoryTotals sums stored duration seconds per category. An empty
// sessionID aggregates every session.
func (s *Store) CategoryTotals(ctx context.Context, sessionID string) (map[model.Category]int64, error) {
	query := "SELECT category, SUM(duration_seconds) FROM categorized_events"
	var args []any
	if sessionID != "" {
		query += " WHERE session_id = ?"
		args = append(args, sessionID)
	}
	query += " GROUP BY category"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	totals := make(map[model.Category]int64)
	for rows.Next() {
		var cat string
		var sum int64
		if err := rows.Scan(&cat, &sum); err != nil {
			return nil, err
		}
		totals[model.Category(cat)] = sum
	}
	return totals, rows.Err()
}

// Sessions returns the distinct session IDs with their event counts.
func (s *Store) Sessions(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT session_id, COUNT(*) FROM categorized_events GROUP BY session_id")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}
