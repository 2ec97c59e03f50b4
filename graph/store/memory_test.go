package store

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreSaveLoad(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Save(ctx, "g1", []byte(`{"nodes":[]}`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	doc, err := s.Load(ctx, "g1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(doc.Body) != `{"nodes":[]}` {
		t.Errorf("Body = %q", doc.Body)
	}
}

func TestMemoryStoreLoadMissing(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.Load(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load missing = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreList(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_ = s.Save(ctx, "b", []byte("2"))
	_ = s.Save(ctx, "a", []byte("1"))

	docs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 2 || docs[0].Name != "a" || docs[1].Name != "b" {
		t.Fatalf("List = %+v, want [a b]", docs)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_ = s.Save(ctx, "g1", []byte("x"))

	if err := s.Delete(ctx, "g1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "g1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete again = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreSaveCopiesBody(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	body := []byte("original")
	_ = s.Save(ctx, "g1", body)
	body[0] = 'X'

	doc, err := s.Load(ctx, "g1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(doc.Body) != "original" {
		t.Errorf("stored body mutated by caller's slice: got %q", doc.Body)
	}
}
