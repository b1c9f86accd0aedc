package project

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"path/filepath"

	"github.com/spf13/afero"
)

// ManifestName is the package manifest domains are detected from.
const ManifestName = "package.json"

// ErrNoManifest means no directory from the start up to the filesystem
// root holds a package.json.
var ErrNoManifest = errors.New("no " + ManifestName + " found")

// Ancestors yields the absolute form of dir, then each parent directory
// up to the filesystem root.
func Ancestors(dir string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if dir == "" {
			dir = "."
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return
		}
		for {
			if !yield(abs) {
				return
			}
			parent := filepath.Dir(abs)
			if parent == abs {
				return
			}
			abs = parent
		}
	}
}

// FindManifest returns the nearest package.json at or above start.
func FindManifest(fsys afero.Fs, start string) (string, error) {
	for dir := range Ancestors(start) {
		p := filepath.Join(dir, ManifestName)
		_, err := fsys.Stat(p)
		switch {
		case err == nil:
			return p, nil
		case !errors.Is(err, fs.ErrNotExist):
			return "", fmt.Errorf("failed to stat %s: %w", p, err)
		}
	}
	return "", ErrNoManifest
}
