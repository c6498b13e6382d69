// Package gallery defines the media-gallery persistence capability and a
// filesystem-backed implementation used where no OS media store exists.
package gallery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Gallery accepts raw encoded image bytes plus a filename and persists them
// to a user-facing media collection. When skipIfExists is set, a file that
// already carries the name is left untouched and no error is reported.
type Gallery interface {
	Persist(ctx context.Context, data []byte, name string, skipIfExists bool) error
}

// Dir is a Gallery writing into a local directory.
type Dir struct {
	root string
}

// NewDir creates a directory-backed gallery rooted at root.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

// Persist implements Gallery.
func (d *Dir) Persist(ctx context.Context, data []byte, name string, skipIfExists bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("no image data to persist")
	}

	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return fmt.Errorf("failed to create gallery directory: %w", err)
	}

	path := filepath.Join(d.root, filepath.Base(name))
	if skipIfExists {
		if _, err := os.Stat(path); err == nil {
			return nil
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write gallery file: %w", err)
	}
	return nil
}
