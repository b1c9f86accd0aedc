package project

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
)

// ErrInvalidManifest marks a package.json that is not a JSON object.
var ErrInvalidManifest = errors.New("invalid package manifest")

// dependency sections in the order they are merged; later sections do not
// overwrite a name already seen
var dependencySections = []string{
	"dependencies",
	"devDependencies",
	"peerDependencies",
	"optionalDependencies",
}

// Manifest is the part of package.json the linter reads.
type Manifest struct {
	Path    string
	Name    string
	Version string
	// Type is "module" or "commonjs" (the default).
	Type string
	// Dependencies maps every declared dependency to its version range.
	Dependencies map[string]string
	Digest       Digest
}

// ParseManifest reads a package.json document.
func ParseManifest(path string, data []byte) (*Manifest, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%s: %w", path, ErrInvalidManifest)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%s: %w", path, ErrInvalidManifest)
	}
	m := &Manifest{
		Path:         path,
		Name:         root.Get("name").String(),
		Version:      root.Get("version").String(),
		Type:         root.Get("type").String(),
		Dependencies: make(map[string]string),
		Digest:       sha256.Sum256(data),
	}
	if m.Type == "" {
		m.Type = "commonjs"
	}
	for _, section := range dependencySections {
		root.Get(section).ForEach(func(k, v gjson.Result) bool {
			if _, seen := m.Dependencies[k.String()]; !seen {
				m.Dependencies[k.String()] = v.String()
			}
			return true
		})
	}
	return m, nil
}

// LoadManifest reads path through fsys.
func LoadManifest(fsys afero.Fs, path string) (*Manifest, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(path, data)
}

// DependencyNames returns the declared dependency names sorted.
func (m *Manifest) DependencyNames() []string {
	if m == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(m.Dependencies))
}

// IsModule reports "type": "module".
func (m *Manifest) IsModule() bool { return m != nil && m.Type == "module" }
