package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema (pages + page_history)
const currentSchemaVersion = 1

// SQLite is a durable local page store. Conditional writes compare the
// stored revision inside a transaction, so it provides the
// compare-and-swap the remote source system lacks.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite creates or opens a SQLite page store at the given path.
// Applies required pragmas and migrations automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Fetch implements Store.
func (s *SQLite) Fetch(ctx context.Context, title string) (Page, error) {
	var p Page
	err := s.db.QueryRowContext(ctx,
		`SELECT title, text, revision FROM pages WHERE title = ?`, title,
	).Scan(&p.Title, &p.Text, &p.Revision)
	if err == sql.ErrNoRows {
		return Page{}, &PageNotFoundError{Title: title}
	}
	if err != nil {
		return Page{}, &TransportError{Op: "fetch", Title: title, Err: err}
	}
	return p, nil
}

// Write implements Store.
func (s *SQLite) Write(ctx context.Context, title, text, summary string, expectRevision int64) (Page, error) {
	pages, err := s.WriteAll(ctx, []PageWrite{{
		Title: title, Text: text, Summary: summary, ExpectRevision: expectRevision,
	}})
	if err != nil {
		return Page{}, err
	}
	return pages[0], nil
}

// WriteUnconditional implements Store.
func (s *SQLite) WriteUnconditional(ctx context.Context, title, text, summary string) (Page, error) {
	pages, err := s.WriteAll(ctx, []PageWrite{{
		Title: title, Text: text, Summary: summary, Unconditional: true,
	}})
	if err != nil {
		return Page{}, err
	}
	return pages[0], nil
}

// WriteAll implements BatchWriter: every write commits in one
// transaction or none does.
func (s *SQLite) WriteAll(ctx context.Context, writes []PageWrite) ([]Page, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &TransportError{Op: "write", Title: firstTitle(writes), Err: err}
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	out := make([]Page, len(writes))
	for i, w := range writes {
		var current int64
		err := tx.QueryRowContext(ctx,
			`SELECT revision FROM pages WHERE title = ?`, w.Title,
		).Scan(&current)
		if err != nil && err != sql.ErrNoRows {
			return nil, &TransportError{Op: "write", Title: w.Title, Err: err}
		}

		if !w.Unconditional && current != w.ExpectRevision {
			return nil, &RevisionMismatchError{Title: w.Title, Expected: w.ExpectRevision, Actual: current}
		}

		next := current + 1
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO pages (title, text, revision, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(title) DO UPDATE SET
				text = excluded.text,
				revision = excluded.revision,
				updated_at = excluded.updated_at
		`, w.Title, w.Text, next, now); err != nil {
			return nil, &TransportError{Op: "write", Title: w.Title, Err: err}
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO page_history (title, revision, summary, saved_at)
			VALUES (?, ?, ?, ?)
		`, w.Title, next, w.Summary, now); err != nil {
			return nil, &TransportError{Op: "write", Title: w.Title, Err: err}
		}
		out[i] = Page{Title: w.Title, Text: w.Text, Revision: next}
	}

	if err := tx.Commit(); err != nil {
		return nil, &TransportError{Op: "write", Title: firstTitle(writes), Err: err}
	}
	return out, nil
}

// Purge implements Store. The local mirror renders nothing, so there is
// no cache to invalidate.
func (s *SQLite) Purge(ctx context.Context, title string) error {
	return nil
}

func firstTitle(writes []PageWrite) string {
	if len(writes) == 0 {
		return ""
	}
	return writes[0].Title
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	// No incremental migrations yet; schema.sql is the v1 shape.
	if version < currentSchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}
	return nil
}
