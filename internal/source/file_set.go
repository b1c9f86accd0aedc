package source

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"
	"sync"

	"fortio.org/safecast"
	"github.com/spf13/afero"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// FileSet owns every File seen by a run: configuration documents, the
// command-line overlay and linted sources, including each fixed version.
// Workers add files concurrently while reporters resolve spans.
type FileSet struct {
	mu    sync.RWMutex
	files []*File
	base  string
}

func NewFileSet() *FileSet { return &FileSet{} }

// NewFileSetWithBase sets the directory relative paths are shown against.
func NewFileSetWithBase(base string) *FileSet { return &FileSet{base: base} }

func (s *FileSet) SetBaseDir(dir string) {
	s.mu.Lock()
	s.base = dir
	s.mu.Unlock()
}

// BaseDir falls back to the working directory.
func (s *FileSet) BaseDir() string {
	s.mu.RLock()
	base := s.base
	s.mu.RUnlock()
	if base != "" {
		return base
	}
	wd, _ := os.Getwd()
	return wd
}

// Add stores content read from disk under path and returns its id.
func (s *FileSet) Add(path string, content []byte) FileID {
	return s.add(&File{Path: cleanPath(path), Content: content, Origin: FromDisk})
}

// AddVirtual stores content that has no file behind it.
func (s *FileSet) AddVirtual(name string, content []byte) FileID {
	return s.add(&File{Path: cleanPath(name), Content: content, Origin: FromMemory})
}

// LoadFS reads path from fsys. A leading BOM is dropped; line endings are
// kept so a fixed file is written back byte for byte.
func (s *FileSet) LoadFS(fsys afero.Fs, path string) (FileID, error) {
	content, err := afero.ReadFile(fsys, path)
	if err != nil {
		return 0, err
	}
	trimmed, bom := bytes.CutPrefix(content, utf8BOM)
	return s.add(&File{Path: cleanPath(path), Content: trimmed, Origin: FromDisk, BOM: bom}), nil
}

func (s *FileSet) add(f *File) FileID {
	f.Hash = sha256.Sum256(f.Content)
	f.CRLF = bytes.Contains(f.Content, []byte("\r\n"))
	f.starts = lineStarts(f.Content)

	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := safecast.Conv[uint32](len(s.files))
	if err != nil {
		panic(fmt.Errorf("file set overflow: %w", err))
	}
	f.ID = FileID(id)
	s.files = append(s.files, f)
	return f.ID
}

// Get returns nil for an id this set never issued.
func (s *FileSet) Get(id FileID) *File {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if int(id) >= len(s.files) {
		return nil
	}
	return s.files[id]
}

// Resolve maps both ends of span. Unknown files resolve to 1:1.
func (s *FileSet) Resolve(span Span) (start, end LineCol) {
	f := s.Get(span.File)
	if f == nil {
		return LineCol{1, 1}, LineCol{1, 1}
	}
	return f.Position(span.Start), f.Position(span.End)
}
