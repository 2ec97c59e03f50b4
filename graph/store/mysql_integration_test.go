package store

import (
	"context"
	"errors"
	"os"
	"testing"
)

// TestMySQLStoreIntegration exercises MySQLStore against a live server
// named by NODEGRAPH_MYSQL_DSN. It is skipped by default since it requires
// network access to a real MySQL instance.
func TestMySQLStoreIntegration(t *testing.T) {
	dsn := os.Getenv("NODEGRAPH_MYSQL_DSN")
	if dsn == "" {
		t.Skip("NODEGRAPH_MYSQL_DSN not set; skipping live MySQL integration test")
	}

	s, err := NewMySQLStore(dsn)
	if err != nil {
		t.Fatalf("NewMySQLStore: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.Save(ctx, "integration-doc", []byte(`{"nodes":[]}`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	defer s.Delete(ctx, "integration-doc")

	doc, err := s.Load(ctx, "integration-doc")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(doc.Body) != `{"nodes":[]}` {
		t.Errorf("Body = %q", doc.Body)
	}

	if err := s.Delete(ctx, "integration-doc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Load(ctx, "integration-doc"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load after delete = %v, want ErrNotFound", err)
	}
}
