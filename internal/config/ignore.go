package config

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// Ignore file names read from the project root.
const (
	GitIgnoreFile   = ".gitignore"
	BiomeIgnoreFile = ".biomeignore"
)

type ignorePattern struct {
	glob    string
	negate  bool
	dirOnly bool
}

// IgnoreMatcher applies gitignore-style patterns.
type IgnoreMatcher struct {
	patterns []ignorePattern
}

// ParseIgnore reads one pattern per line. Blank lines and '#' comments are
// skipped, '!' negates, a leading '/' anchors to the root and anything else
// matches at any depth.
func ParseIgnore(data []byte) *IgnoreMatcher {
	m := &IgnoreMatcher{}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		p := ignorePattern{}
		if strings.HasPrefix(line, "!") {
			p.negate = true
			line = line[1:]
		}
		if strings.HasPrefix(line, `\`) {
			line = line[1:]
		}
		if strings.HasSuffix(line, "/") {
			p.dirOnly = true
			line = strings.TrimSuffix(line, "/")
		}
		switch {
		case strings.HasPrefix(line, "/"):
			line = strings.TrimPrefix(line, "/")
		case strings.Contains(line, "/"):
			// путь с разделителем в середине тоже привязан к корню
		default:
			line = "**/" + line
		}
		if line == "" || !ValidGlob(line) {
			continue
		}
		p.glob = line
		m.patterns = append(m.patterns, p)
	}
	return m
}

// Len returns the number of active patterns.
func (m *IgnoreMatcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.patterns)
}

// Ignored reports whether rel (slash-separated, relative to the root) is
// ignored. The last matching pattern decides.
func (m *IgnoreMatcher) Ignored(rel string, isDir bool) bool {
	if m == nil {
		return false
	}
	rel = cleanRel(rel)
	ignored := false
	for _, p := range m.patterns {
		if p.matches(rel, isDir) {
			ignored = !p.negate
		}
	}
	return ignored
}

func (p ignorePattern) matches(rel string, isDir bool) bool {
	if (!p.dirOnly || isDir) && matchOne(p.glob, rel) {
		return true
	}
	// любой родительский каталог, совпавший с шаблоном, игнорирует потомков
	for dir := path.Dir(rel); dir != "." && dir != "/"; dir = path.Dir(dir) {
		if matchOne(p.glob, dir) {
			return true
		}
	}
	return false
}

func matchOne(glob, rel string) bool {
	ok, err := doublestar.Match(glob, rel)
	return err == nil && ok
}

// Merge appends the patterns of other; they take precedence.
func (m *IgnoreMatcher) Merge(other *IgnoreMatcher) {
	if other != nil {
		m.patterns = append(m.patterns, other.patterns...)
	}
}

// LoadIgnore reads the ignore files relevant for cfg under root. Missing
// files are not an error.
func LoadIgnore(fsys afero.Fs, root string, cfg *Configuration) (*IgnoreMatcher, error) {
	m := &IgnoreMatcher{}
	names := []string{BiomeIgnoreFile}
	if cfg != nil && cfg.Vcs != nil && Bool(cfg.Vcs.Enabled, false) && Bool(cfg.Vcs.UseIgnoreFile, false) {
		names = []string{GitIgnoreFile, BiomeIgnoreFile}
	}
	for _, name := range names {
		data, err := afero.ReadFile(fsys, filepath.Join(root, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		m.Merge(ParseIgnore(data))
	}
	return m, nil
}
