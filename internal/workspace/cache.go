package workspace

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/vmihailenco/msgpack/v5"

	"weblint/internal/diag"
	"weblint/internal/project"
	"weblint/internal/source"
)

// entryMagic starts every cache entry; the last byte is the layout version
// of CachedResult and must change with it.
var entryMagic = []byte("wlc\x02")

// DiskCache stores per-file lint results keyed by project.Digest. Entries
// are written to a temp file and renamed into place, so readers never see
// a partial entry and no locking is needed.
type DiskCache struct {
	fs   afero.Fs
	root string // <dir>/results
}

// CachedResult is the cached lint outcome of one file. Spans keep the
// FileID of the run that stored them and are rebound on load.
type CachedResult struct {
	Path        string            `msgpack:"path"`
	ContentHash project.Digest    `msgpack:"hash"`
	Diagnostics []diag.Diagnostic `msgpack:"diags"`
	Actions     int               `msgpack:"actions,omitempty"`
}

// DefaultCacheDir is the per-user cache directory for app.
func DefaultCacheDir(app string) (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locate cache dir: %w", err)
	}
	return filepath.Join(base, app), nil
}

// OpenDiskCache prepares a cache rooted at dir. A nil fsys means the OS
// filesystem.
func OpenDiskCache(fsys afero.Fs, dir string) (*DiskCache, error) {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	c := &DiskCache{fs: fsys, root: filepath.Join(dir, "results")}
	if err := fsys.MkdirAll(c.root, 0o755); err != nil {
		return nil, fmt.Errorf("open cache %s: %w", dir, err)
	}
	return c, nil
}

// entryPath shards entries by the first key byte.
func (c *DiskCache) entryPath(key project.Digest) string {
	name := key.String()
	return filepath.Join(c.root, name[:2], name[2:])
}

// Put stores res under key, replacing any previous entry.
func (c *DiskCache) Put(key project.Digest, res *CachedResult) error {
	if c == nil {
		return nil
	}
	body, err := msgpack.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	dst := c.entryPath(key)
	dir := filepath.Dir(dst)
	if err := c.fs.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := afero.TempFile(c.fs, dir, ".put-*")
	if err != nil {
		return err
	}
	_, werr := tmp.Write(append(bytes.Clone(entryMagic), body...))
	if err := errors.Join(werr, tmp.Close()); err != nil {
		c.fs.Remove(tmp.Name())
		return err
	}
	return c.fs.Rename(tmp.Name(), dst)
}

// Get loads the entry for key into out. A missing entry or one written by
// another layout version is a miss, not an error.
func (c *DiskCache) Get(key project.Digest, out *CachedResult) (bool, error) {
	if c == nil {
		return false, nil
	}
	data, err := afero.ReadFile(c.fs, c.entryPath(key))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, err
	}
	body, ok := bytes.CutPrefix(data, entryMagic)
	if !ok {
		return false, nil
	}
	if err := msgpack.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf("decode cache entry: %w", err)
	}
	return true, nil
}

// DropAll removes every entry.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	if err := c.fs.RemoveAll(c.root); err != nil {
		return err
	}
	return c.fs.MkdirAll(c.root, 0o755)
}

// rebind moves cached spans onto the FileID of the current run.
func rebind(diags []diag.Diagnostic, file source.FileID) {
	for i := range diags {
		d := &diags[i]
		d.Primary.File = file
		for j := range d.Notes {
			d.Notes[j].Span.File = file
		}
		for j := range d.Advices {
			d.Advices[j].Span.File = file
		}
	}
}
