package source

import (
	"bytes"
	"path/filepath"
	"slices"
	"strings"
)

// FileID indexes a File inside its FileSet. Ids are never reused.
type FileID uint32

// Origin tells where a File's content came from.
type Origin uint8

const (
	FromDisk Origin = iota
	// FromMemory marks stdin, the command-line overlay and files added by tests.
	FromMemory
)

// File is one version of a linted document. Content never changes after
// the file is added; a rewrite by the fixer is a new File.
type File struct {
	ID      FileID
	Path    string // slash-separated
	Content []byte
	Hash    [32]byte
	Origin  Origin
	BOM     bool // a UTF-8 byte order mark was stripped on load
	CRLF    bool

	starts []uint32 // offset of the first byte of each line
}

// LineCol is a 1-based position. Col counts bytes.
type LineCol struct {
	Line uint32
	Col  uint32
}

func lineStarts(content []byte) []uint32 {
	starts := make([]uint32, 1, bytes.Count(content, []byte{'\n'})+1)
	for i, b := range content {
		if b == '\n' {
			starts = append(starts, uint32(i+1))
		}
	}
	return starts
}

// LineCount counts a trailing empty line after a final newline.
func (f *File) LineCount() uint32 { return uint32(len(f.starts)) }

// Position maps a byte offset to its line and column. Offsets past the end
// land on the last line.
func (f *File) Position(off uint32) LineCol {
	i, found := slices.BinarySearch(f.starts, off)
	if !found {
		i--
	}
	i = max(i, 0)
	return LineCol{Line: uint32(i + 1), Col: off - f.starts[i] + 1}
}

// Line returns the text of line n (1-based) without its terminator.
func (f *File) Line(n uint32) string {
	if n == 0 || n > f.LineCount() {
		return ""
	}
	start := f.starts[n-1]
	end := uint32(len(f.Content))
	if n < f.LineCount() {
		end = f.starts[n] - 1
	}
	if start > end {
		return ""
	}
	return strings.TrimSuffix(string(f.Content[start:end]), "\r")
}

// DisplayPath renders the path for output. Modes are "absolute",
// "relative" (to base), "basename" and "auto", which is relative for files
// under base and the loaded path otherwise.
func (f *File) DisplayPath(mode, base string) string {
	switch mode {
	case "absolute":
		if abs, err := filepath.Abs(f.Path); err == nil {
			return cleanPath(abs)
		}
	case "relative", "auto":
		if rel, ok := relativeTo(f.Path, base); ok {
			return rel
		}
	case "basename":
		return filepath.Base(f.Path)
	}
	return f.Path
}

func cleanPath(p string) string { return filepath.ToSlash(filepath.Clean(p)) }

// relativeTo fails for paths that leave base; callers show those as loaded.
func relativeTo(p, base string) (string, bool) {
	if base == "" || (filepath.IsAbs(p) != filepath.IsAbs(base)) {
		absP, errP := filepath.Abs(p)
		absB, errB := filepath.Abs(base)
		if errP != nil || errB != nil {
			return "", false
		}
		p, base = absP, absB
	}
	rel, err := filepath.Rel(base, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return cleanPath(rel), true
}
