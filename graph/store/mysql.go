package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLStore is a shared, multi-process GraphDocumentStore backed by a
// pooled connection with a startup ping to fail fast on a bad DSN.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore opens a connection pool against dsn (a go-sql-driver/mysql
// data source name) and ensures the documents table exists.
func NewMySQLStore(dsn string) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open mysql: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping mysql: %w", err)
	}

	s := &MySQLStore{db: db}
	if err := s.createTable(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *MySQLStore) createTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS graph_documents (
			name VARCHAR(255) PRIMARY KEY,
			body LONGBLOB NOT NULL,
			updated_at DATETIME NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("store: create table: %w", err)
	}
	return nil
}

// Save upserts a document under name.
func (s *MySQLStore) Save(ctx context.Context, name string, body []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO graph_documents (name, body, updated_at) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE body = VALUES(body), updated_at = VALUES(updated_at)
	`, name, body, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("store: save %q: %w", name, err)
	}
	return nil
}

// Load returns the document saved under name, or ErrNotFound.
func (s *MySQLStore) Load(ctx context.Context, name string) (Document, error) {
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
func (s *MySQLStore) List(ctx context.Context) ([]Document, error) {
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
func (s *MySQLStore) Delete(ctx context.Context, name string) error {
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

// Close closes the underlying connection pool.
func (s *MySQLStore) Close() error { return s.db.Close() }

// Ping verifies the database connection is alive.
func (s *MySQLStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
