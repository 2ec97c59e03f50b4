package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a single-file GraphDocumentStore, grounded on the
// teacher's SQLiteStore connection setup: WAL mode for concurrent readers,
// a single-writer connection pool (SQLite allows one writer at a time),
// and a busy timeout so a concurrent writer blocks briefly instead of
// failing outright.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if necessary) the SQLite database at
// path, applies its pragmas, and ensures the documents table exists. Pass
// ":memory:" for an ephemeral, process-local database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("store: %s: %w", pragma, err)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.createTable(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) createTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS graph_documents (
			name TEXT PRIMARY KEY,
			body BLOB NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("store: create table: %w", err)
	}
	return nil
}

// Save upserts a document under name.
func (s *SQLiteStore) Save(ctx context.Context, name string, body []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO graph_documents (name, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
	`, name, body, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("store: save %q: %w", name, err)
	}
	return nil
}

// Load returns the document saved under name, or ErrNotFound.
func (s *SQLiteStore) Load(ctx context.Context, name string) (Document, error) {
	var d Document
	d.Name = name
	row := s.db.QueryRowContext(ctx, `SELECT body, updated_at FROM graph_documents WHERE name = ?`, name)
	if err := row.Scan(&d.Body, &d.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return Document{}, ErrNotFound
		}
		return Document{}, fmt.Errorf("store: load %q: %w", name, err)
	}
	return d, nil
}

// List returns every stored document's metadata, ordered by name.
func (s *SQLiteStore) List(ctx context.Context) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, body, updated_at FROM graph_documents ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.Name, &d.Body, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("store: list scan: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Delete removes the document saved under name, or returns ErrNotFound.
func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM graph_documents WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("store: delete %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete %q: %w", name, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }
