package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileSnapshotter_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "nested", "memory.json")
	s, err := NewFileSnapshotter(p)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	ctx := context.Background()

	if _, err := s.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound on fresh path, got %v", err)
	}

	if err := s.Save(ctx, []byte(`{"a":1}`)); err != nil {
		t.Fatalf("save1: %v", err)
	}
	if err := s.Save(ctx, []byte(`{"a":2}`)); err != nil {
		t.Fatalf("save2: %v", err)
	}
	data, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(data) != `{"a":2}` {
		t.Fatalf("unexpected content: %s", data)
	}

	// no temp files left behind
	entries, _ := os.ReadDir(filepath.Dir(p))
	if len(entries) != 1 {
		t.Fatalf("expected only the snapshot file, got %d entries", len(entries))
	}
}

func TestFileSnapshotter_EmptyFileIsNotFound(t *testing.T) {
	p := filepath.Join(t.TempDir(), "memory.json")
	if err := os.WriteFile(p, []byte("  \n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, err := NewFileSnapshotter(p)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := s.Load(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
