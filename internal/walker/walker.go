// Package walker enumerates candidate files under one or more root
// directories, pruning excluded directory names at every depth.
package walker

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Entry is one discovered regular file.
type Entry struct {
	// Path is the full path, rooted at the walked root.
	Path string
	// Root is the root directory this entry was found under.
	Root string
}

// Stats counts what the walk passed over.
type Stats struct {
	Files        int
	Dirs         int
	ExcludedDirs int
	Unreadable   int
	Irregular    int
}

// Walker traverses roots depth-first in lexical order.
type Walker struct {
	roots    []string
	excluded map[string]struct{}
	stats    Stats
}

// New builds a walker over roots. Excluded directory names are matched
// case-sensitively against the base name of every subdirectory.
func New(roots []string, excludeNames []string) *Walker {
	excluded := make(map[string]struct{}, len(excludeNames))
	for _, name := range excludeNames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		excluded[name] = struct{}{}
	}
	return &Walker{roots: roots, excluded: excluded}
}

// Stats returns counts accumulated so far. Valid after Walk returns and
// between callback invocations.
func (w *Walker) Stats() Stats { return w.stats }

// Walk calls fn once per regular file, depth-first and lexically ordered
// within each directory. Returning an error from fn (including reporting
// ctx.Err()) stops the walk. Unreadable directories and files are counted
// and skipped, never fatal.
func (w *Walker) Walk(ctx context.Context, fn func(Entry) error) error {
	for _, root := range w.roots {
		info, err := os.Stat(root)
		if err != nil {
			return fmt.Errorf("walk root %s: %w", root, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("walk root %s: not a directory", root)
		}
		if err := w.walkRoot(ctx, root, fn); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) walkRoot(ctx context.Context, root string, fn func(Entry) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable directory or a file that vanished mid-walk.
			w.stats.Unreadable++
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if path == root {
				return nil
			}
			if _, skip := w.excluded[d.Name()]; skip {
				w.stats.ExcludedDirs++
				return fs.SkipDir
			}
			w.stats.Dirs++
			return nil
		}
		if !d.Type().IsRegular() {
			w.stats.Irregular++
			return nil
		}
		w.stats.Files++
		return fn(Entry{Path: path, Root: root})
	})
}
