package gallery

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestDirPersist(t *testing.T) {
	root := t.TempDir()
	g := NewDir(filepath.Join(root, "media"))

	if err := g.Persist(context.Background(), []byte("png-bytes"), "shot.png", false); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, "media", "shot.png"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("Persisted content mismatch: %q", data)
	}
}

func TestDirPersistSkipIfExists(t *testing.T) {
	root := t.TempDir()
	g := NewDir(root)

	if err := g.Persist(context.Background(), []byte("original"), "shot.png", false); err != nil {
		t.Fatal(err)
	}
	if err := g.Persist(context.Background(), []byte("replacement"), "shot.png", true); err != nil {
		t.Fatalf("skipIfExists should not error: %v", err)
	}

	data, _ := os.ReadFile(filepath.Join(root, "shot.png"))
	if string(data) != "original" {
		t.Errorf("Existing file should be left untouched, got %q", data)
	}
}

func TestDirPersistOverwrites(t *testing.T) {
	root := t.TempDir()
	g := NewDir(root)

	g.Persist(context.Background(), []byte("original"), "shot.png", false)
	if err := g.Persist(context.Background(), []byte("replacement"), "shot.png", false); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(filepath.Join(root, "shot.png"))
	if string(data) != "replacement" {
		t.Errorf("Expected overwrite, got %q", data)
	}
}

func TestDirPersistEmptyData(t *testing.T) {
	g := NewDir(t.TempDir())
	if err := g.Persist(context.Background(), nil, "shot.png", false); err == nil {
		t.Error("Empty data should fail")
	}
}

func TestDirPersistStripsPathComponents(t *testing.T) {
	root := t.TempDir()
	g := NewDir(root)

	if err := g.Persist(context.Background(), []byte("x"), "../escape.png", false); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(root, "escape.png")); err != nil {
		t.Error("Name should be reduced to its base component inside the gallery root")
	}
}
