// Package store persists serialized NodeTree documents under a name, with
// a choice of backend: in-memory (tests), SQLite (single-process,
// zero-setup), or MySQL (shared, multi-process). All three implement the
// same GraphDocumentStore interface: a flat named-document table, since
// this module has no replay or time-travel scope.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Load/Delete when name does not exist.
var ErrNotFound = errors.New("store: document not found")

// Document is one named, timestamped graph document as persisted by a
// GraphDocumentStore. Body holds the raw bytes a graph/serialize.Serializer
// produced (or will consume).
type Document struct {
	Name string
	Body []byte
	UpdatedAt time.Time
}

// GraphDocumentStore saves and loads serialized graph documents by name.
// Implementations must be safe for concurrent use.
type GraphDocumentStore interface {
	// Save upserts a document under name.
	Save(ctx context.Context, name string, body []byte) error

	// Load returns the document saved under name, or ErrNotFound.
	Load(ctx context.Context, name string) (Document, error)

	// List returns every stored document (name, body and update time),
	// ordered by name.
	List(ctx context.Context) ([]Document, error)

	// Delete removes the document saved under name, or returns
	// ErrNotFound if it does not exist.
	Delete(ctx context.Context, name string) error

	// Close releases any underlying resources (connections, file
	// handles). Safe to call more than once.
	Close() error
}
