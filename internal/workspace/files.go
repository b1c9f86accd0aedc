package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/afero"
)

// skippedDirs are never descended into.
var skippedDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	".hg":          true,
	".svn":         true,
}

// Collect expands paths into the analyzable files they name: directories
// are walked, files outside files.includes or matched by an ignore file
// are dropped, as are files without a grammar. Explicitly named files of
// an unsupported language are kept so LintFile can report them.
func (w *Workspace) Collect(paths []string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{w.loaded.Root}
	}
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, p := range paths {
		p = w.abs(p)
		info, err := w.fs.Stat(p)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				if _, open := w.Document(p); open {
					add(p)
					continue
				}
			}
			return nil, fmt.Errorf("collect %s: %w", p, err)
		}
		if !info.IsDir() {
			if w.loaded.Included(p, false) {
				add(p)
			}
			continue
		}
		err = afero.Walk(w.fs, p, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				if path != p && (skippedDirs[info.Name()] || !w.loaded.Included(path, true)) {
					return filepath.SkipDir
				}
				return nil
			}
			if _, err := Language(path); err != nil {
				return nil
			}
			if w.loaded.Included(path, false) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("collect %s: %w", p, err)
		}
	}
	slices.Sort(out)
	return out, nil
}
