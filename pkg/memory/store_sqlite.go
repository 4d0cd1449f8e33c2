package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the canonical persistent memory storage.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (and if needed creates) the database under path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create memory db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection keeps concurrent goroutines off the SQLite writer lock.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &SQLiteStore{db: db}
	if err := store.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) init() error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA synchronous=NORMAL;`,
		`PRAGMA temp_store=MEMORY;`,
		`PRAGMA busy_timeout=5000;`,
		`CREATE TABLE IF NOT EXISTS interactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			meta TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS facts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts TEXT NOT NULL,
			source TEXT NOT NULL,
			fact TEXT NOT NULL,
			importance INTEGER NOT NULL DEFAULT 1
		);`,
		`CREATE INDEX IF NOT EXISTS facts_importance_idx ON facts(importance DESC, id DESC);`,
		`CREATE TABLE IF NOT EXISTS abbreviations (
			code TEXT PRIMARY KEY,
			meaning TEXT NOT NULL,
			ref TEXT NOT NULL DEFAULT ''
		);`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %q: %w", sqlHead(stmt), err)
		}
	}
	return nil
}

// sqlHead shortens a schema statement for error messages.
func sqlHead(stmt string) string {
	stmt = strings.TrimSpace(stmt)
	if len(stmt) <= 80 {
		return stmt
	}
	return stmt[:80] + "..."
}

// nowTS returns the store-assigned timestamp. Text timestamps keep the
// log readable with plain sqlite3; insertion order is carried by the id
// column, not by string comparison.
func nowTS() string { return time.Now().UTC().Format(time.RFC3339Nano) }

func (s *SQLiteStore) AddInteraction(ctx context.Context, role, content, meta string) error {
	if strings.TrimSpace(role) == "" {
		return fmt.Errorf("add interaction: empty role")
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO interactions(ts, role, content, meta)
VALUES(?, ?, ?, ?)`, nowTS(), role, content, meta)
	if err != nil {
		return fmt.Errorf("add interaction: %w", err)
	}
	return nil
}

// RecentInteractions returns up to limit rows, newest first.
func (s *SQLiteStore) RecentInteractions(ctx context.Context, limit int) ([]Interaction, error) {
	if limit <= 0 {
		limit = 1
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, ts, role, content, meta
FROM interactions
ORDER BY id DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent interactions: %w", err)
	}
	defer rows.Close()

	out := make([]Interaction, 0, limit)
	for rows.Next() {
		var in Interaction
		if err := rows.Scan(&in.ID, &in.Timestamp, &in.Role, &in.Content, &in.Meta); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interactions: %w", err)
	}
	return out, nil
}

// AllInteractions returns the full log in insertion order.
func (s *SQLiteStore) AllInteractions(ctx context.Context) ([]Interaction, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, ts, role, content, meta
FROM interactions
ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("all interactions: %w", err)
	}
	defer rows.Close()

	var out []Interaction
	for rows.Next() {
		var in Interaction
		if err := rows.Scan(&in.ID, &in.Timestamp, &in.Role, &in.Content, &in.Meta); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interactions: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) AddFact(ctx context.Context, source, text string, importance int) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("add fact: empty text")
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO facts(ts, source, fact, importance)
VALUES(?, ?, ?, ?)`, nowTS(), source, text, importance)
	if err != nil {
		return fmt.Errorf("add fact: %w", err)
	}
	return nil
}

// Facts returns stored knowledge ordered by importance desc, then
// recency desc.
func (s *SQLiteStore) Facts(ctx context.Context, minImportance int) ([]Fact, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, ts, source, fact, importance
FROM facts
WHERE importance >= ?
ORDER BY importance DESC, id DESC`, minImportance)
	if err != nil {
		return nil, fmt.Errorf("list facts: %w", err)
	}
	defer rows.Close()

	var out []Fact
	for rows.Next() {
		var f Fact
		if err := rows.Scan(&f.ID, &f.Timestamp, &f.Source, &f.Text, &f.Importance); err != nil {
			return nil, fmt.Errorf("scan fact: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate facts: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) UpsertAbbreviation(ctx context.Context, code, meaning, ref string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return fmt.Errorf("upsert abbreviation: empty code")
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO abbreviations(code, meaning, ref)
VALUES(?, ?, ?)
ON CONFLICT(code) DO UPDATE SET meaning = excluded.meaning, ref = excluded.ref`, code, meaning, ref)
	if err != nil {
		return fmt.Errorf("upsert abbreviation: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LookupAbbreviation(ctx context.Context, code string) (Abbreviation, bool, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT code, meaning, ref
FROM abbreviations
WHERE code = ?`, strings.ToUpper(strings.TrimSpace(code)))
	var ab Abbreviation
	if err := row.Scan(&ab.Code, &ab.Meaning, &ab.Ref); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Abbreviation{}, false, nil
		}
		return Abbreviation{}, false, fmt.Errorf("lookup abbreviation: %w", err)
	}
	return ab, true, nil
}

func (s *SQLiteStore) AllAbbreviations(ctx context.Context) ([]Abbreviation, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT code, meaning, ref
FROM abbreviations
ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list abbreviations: %w", err)
	}
	defer rows.Close()

	var out []Abbreviation
	for rows.Next() {
		var ab Abbreviation
		if err := rows.Scan(&ab.Code, &ab.Meaning, &ab.Ref); err != nil {
			return nil, fmt.Errorf("scan abbreviation: %w", err)
		}
		out = append(out, ab)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate abbreviations: %w", err)
	}
	return out, nil
}
