package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bim-viewer/internal/viewer/model"
)

// ============================================================
// SQLite view store
// ============================================================

// ErrNotFound indicates a saved view that does not exist.
var ErrNotFound = errors.New("store: view not found")

// Store persists named color-rule views. The configuration document
// itself stays external to the core; this is the persistence
// collaborator behind the views API.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const migration = `
CREATE TABLE IF NOT EXISTS views (
    name       TEXT PRIMARY KEY,
    rules      TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

// Init applies the schema.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, migration); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	return nil
}

// Save upserts a named view's ordered rule list.
func (s *Store) Save(ctx context.Context, name string, rules []model.ColorRule) error {
	data, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("encode rules: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO views (name, rules, updated_at)
        VALUES (?, ?, ?)
        ON CONFLICT(name) DO UPDATE SET rules = excluded.rules, updated_at = excluded.updated_at
    `, name, string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save view: %w", err)
	}
	return nil
}

// Get returns the ordered rule list of a saved view.
func (s *Store) Get(ctx context.Context, name string) ([]model.ColorRule, error) {
	row := s.db.QueryRowContext(ctx, `SELECT rules FROM views WHERE name = ?`, name)

	var raw string
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return nil, err
	}
	var rules []model.ColorRule
	if err := json.Unmarshal([]byte(raw), &rules); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	return rules, nil
}

// List returns saved view names, alphabetical.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM views ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// OpenSQLite opens (and creates if needed) the sqlite database.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
