package utils

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	if !DirExists(dir) {
		t.Error("Directory should exist after EnsureDir")
	}

	// Idempotent on an existing directory.
	if err := EnsureDir(dir); err != nil {
		t.Errorf("EnsureDir on existing dir: %v", err)
	}
}

func TestGetFileExtension(t *testing.T) {
	tests := map[string]string{
		"photo.PNG":    "png",
		"photo.jpeg":   "jpeg",
		"archive.tar":  "tar",
		"no_extension": "",
	}
	for in, want := range tests {
		if got := GetFileExtension(in); got != want {
			t.Errorf("GetFileExtension(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsImageFile(t *testing.T) {
	for _, f := range []string{"a.png", "b.JPG", "c.webp"} {
		if !IsImageFile(f) {
			t.Errorf("%s should be an image file", f)
		}
	}
	for _, f := range []string{"a.txt", "b.pdf", "noext"} {
		if IsImageFile(f) {
			t.Errorf("%s should not be an image file", f)
		}
	}
}

func TestFileExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	if FileExists(path) {
		t.Error("Missing file reported as existing")
	}
	os.WriteFile(path, []byte("x"), 0o644)
	if !FileExists(path) {
		t.Error("Existing file reported as missing")
	}
}

func TestSanitizeFilename(t *testing.T) {
	if got := SanitizeFilename(`a/b\c:d*e?f"g<h>i|j`); strings.ContainsAny(got, `/\:*?"<>|`) {
		t.Errorf("Sanitized name still contains invalid characters: %q", got)
	}
	if got := SanitizeFilename("  .trimmed. "); got != "trimmed" {
		t.Errorf("Expected trimmed, got %q", got)
	}
}

func TestExportFileName(t *testing.T) {
	if got := ExportFileName("holiday"); got != "holiday.png" {
		t.Errorf("Expected holiday.png, got %q", got)
	}
	if got := ExportFileName("holiday.png"); got != "holiday.png" {
		t.Errorf("Extension should not double up, got %q", got)
	}
	if got := ExportFileName("a/b"); got != "a_b.png" {
		t.Errorf("Expected sanitized a_b.png, got %q", got)
	}

	// Empty custom name falls back to a microsecond timestamp.
	got := ExportFileName("")
	base := strings.TrimSuffix(got, ".png")
	if _, err := strconv.ParseInt(base, 10, 64); err != nil {
		t.Errorf("Expected numeric timestamp name, got %q", got)
	}
}
