// Package filesystem enumerates and watches the local document folder
// that receives loosely-named output files.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/meridian-labs/docket-cli/internal/core/ports/driven"
)

// DefaultExtensions are the candidate file extensions when none are
// configured.
var DefaultExtensions = []string{".pdf"}

// Ensure Lister implements the interface.
var _ driven.FolderLister = (*Lister)(nil)

// Lister enumerates candidate document paths under a folder.
type Lister struct {
	extensions map[string]struct{}
}

// NewLister creates a lister accepting the given extensions
// (case-insensitive, leading dot). Empty means DefaultExtensions.
func NewLister(extensions []string) *Lister {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		set[strings.ToLower(ext)] = struct{}{}
	}
	return &Lister{extensions: set}
}

// List walks the root folder and returns matching file paths, sorted so
// repeated passes visit candidates in the same order.
func (l *Lister) List(ctx context.Context, root string) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}
		if l.Accepts(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing folder %s: %w", root, err)
	}

	sort.Strings(paths)
	return paths, nil
}

// Accepts reports whether a path has a candidate extension.
func (l *Lister) Accepts(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	_, ok := l.extensions[ext]
	return ok
}
