package semantic

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

var resolveExtensions = []string{".ts", ".tsx", ".d.ts", ".js", ".jsx", ".mjs", ".cjs", ".mts", ".cts"}

// resolveSpecifier maps a relative import specifier to a file. Bare
// specifiers (packages) are left unresolved.
func resolveSpecifier(fsys afero.Fs, from, spec string) string {
	if fsys == nil || from == "" || !isRelative(spec) {
		return ""
	}
	base := filepath.Join(filepath.Dir(from), filepath.FromSlash(spec))
	if isFile(fsys, base) {
		return base
	}
	// "./a.js" may name a TypeScript source
	if ext := filepath.Ext(base); ext == ".js" || ext == ".jsx" || ext == ".mjs" || ext == ".cjs" {
		stem := strings.TrimSuffix(base, ext)
		for _, alt := range []string{".ts", ".tsx", ".mts", ".cts"} {
			if isFile(fsys, stem+alt) {
				return stem + alt
			}
		}
	}
	for _, ext := range resolveExtensions {
		if isFile(fsys, base+ext) {
			return base + ext
		}
	}
	for _, ext := range resolveExtensions {
		if p := filepath.Join(base, "index"+ext); isFile(fsys, p) {
			return p
		}
	}
	return ""
}

func isRelative(spec string) bool {
	return spec == "." || spec == ".." || strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../")
}

func isFile(fsys afero.Fs, p string) bool {
	info, err := fsys.Stat(p)
	return err == nil && !info.IsDir()
}
