package config

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Includes is an ordered list of globs where a leading '!' excludes. Paths
// are slash-separated and relative to the project root. The last matching
// pattern decides; with no positive pattern every path starts included.
type Includes []string

func (in Includes) Matches(rel string) bool {
	if len(in) == 0 {
		return true
	}
	rel = cleanRel(rel)
	included := true
	for _, p := range in {
		if !strings.HasPrefix(p, "!") {
			included = false
			break
		}
	}
	for _, p := range in {
		neg := strings.HasPrefix(p, "!")
		pat := strings.TrimPrefix(p, "!")
		if !matchGlob(pat, rel) {
			continue
		}
		included = !neg
	}
	return included
}

func cleanRel(rel string) string {
	rel = strings.TrimPrefix(path.Clean(strings.ReplaceAll(rel, "\\", "/")), "./")
	return strings.TrimPrefix(rel, "/")
}

// matchGlob matches pat against rel. A pattern matching a directory also
// matches everything below it.
func matchGlob(pat, rel string) bool {
	pat = strings.TrimPrefix(pat, "./")
	if ok, err := doublestar.Match(pat, rel); err == nil && ok {
		return true
	}
	for dir := path.Dir(rel); dir != "." && dir != "/"; dir = path.Dir(dir) {
		if ok, err := doublestar.Match(strings.TrimSuffix(pat, "/"), dir); err == nil && ok {
			return true
		}
	}
	return false
}

// ValidGlob reports whether pat is a well-formed pattern.
func ValidGlob(pat string) bool {
	return doublestar.ValidatePattern(strings.TrimPrefix(pat, "!"))
}
