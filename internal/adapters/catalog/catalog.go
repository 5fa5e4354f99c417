// Package catalog lists the local photographs memes are drawn on.
package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jsamuelsen/meme-generator/internal/domain"
)

// Directory is an ImageCatalog backed by a single directory. It is not
// recursive and re-reads the directory on every call.
type Directory struct {
	dir        string
	extensions []string
}

// NewDirectory creates a catalog for dir. Extension matching is
// case-insensitive; extensions include the leading dot.
func NewDirectory(dir string, extensions []string) *Directory {
	exts := make([]string, 0, len(extensions))
	for _, e := range extensions {
		exts = append(exts, strings.ToLower(e))
	}

	return &Directory{dir: dir, extensions: exts}
}

// List returns the image paths in lexical order.
func (d *Directory) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(d.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.NewNotFoundError("image directory", d.dir)
		}
		return nil, fmt.Errorf("reading image directory: %w", err)
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() && e.Type()&os.ModeSymlink == 0 {
			continue
		}

		if d.matches(e.Name()) {
			paths = append(paths, filepath.Join(d.dir, e.Name()))
		}
	}

	if len(paths) == 0 {
		return nil, domain.NewNotFoundError("image", d.dir)
	}

	slices.Sort(paths)

	return paths, nil
}

func (d *Directory) matches(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}

	return slices.Contains(d.extensions, strings.ToLower(filepath.Ext(name)))
}

// Name implements ports.HealthChecker.
func (d *Directory) Name() string {
	return "image-catalog"
}

// Check fails when the catalog has no images.
func (d *Directory) Check(ctx context.Context) error {
	_, err := d.List(ctx)
	return err
}
