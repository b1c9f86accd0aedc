package source

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

func TestFixedVersionGetsNewID(t *testing.T) {
	fs := NewFileSet()
	first := fs.Add("src/app.js", []byte("debugger;\n"))
	fixed := fs.Add("src/app.js", []byte("\n"))
	if first == fixed {
		t.Fatalf("both versions got id %d", first)
	}
	if got := string(fs.Get(first).Content); got != "debugger;\n" {
		t.Errorf("first version content = %q", got)
	}
	if fs.Get(first).Hash == fs.Get(fixed).Hash {
		t.Error("different content hashed alike")
	}
	if fs.Get(FileID(42)) != nil {
		t.Error("unknown id resolved to a file")
	}
}

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.js", []byte("let a;\nlet bb;\n\nx"))

	cases := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{6, LineCol{1, 7}},
		{7, LineCol{2, 1}},
		{11, LineCol{2, 5}},
		{15, LineCol{3, 1}},
		{16, LineCol{4, 1}},
		{17, LineCol{4, 2}},
	}
	for _, tc := range cases {
		start, _ := fs.Resolve(Span{File: id, Start: tc.off, End: tc.off})
		if start != tc.want {
			t.Errorf("offset %d: got %+v, want %+v", tc.off, start, tc.want)
		}
	}
	if start, _ := fs.Resolve(Span{File: 99}); start != (LineCol{1, 1}) {
		t.Errorf("unknown file resolved to %+v", start)
	}
}

func TestLines(t *testing.T) {
	f := NewFileSet()
	file := f.Get(f.AddVirtual("a.css", []byte("a {\r\n}\nb {}")))
	if file.LineCount() != 3 {
		t.Fatalf("LineCount = %d", file.LineCount())
	}
	for i, want := range []string{"a {", "}", "b {}", ""} {
		if got := file.Line(uint32(i + 1)); got != want {
			t.Errorf("line %d = %q, want %q", i+1, got, want)
		}
	}
	if file.Line(0) != "" {
		t.Error("line 0 must be empty")
	}
	if !file.CRLF || file.Origin != FromMemory {
		t.Errorf("CRLF = %v, origin = %v", file.CRLF, file.Origin)
	}
}

func TestLoadFSStripsBOM(t *testing.T) {
	mem := afero.NewMemMapFs()
	if err := afero.WriteFile(mem, "/p/biome.json", []byte("\xEF\xBB\xBF{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	f := NewFileSet()
	id, err := f.LoadFS(mem, "/p/biome.json")
	if err != nil {
		t.Fatalf("LoadFS: %v", err)
	}
	file := f.Get(id)
	if string(file.Content) != "{}\n" || !file.BOM || file.CRLF {
		t.Errorf("content = %q, bom = %v, crlf = %v", file.Content, file.BOM, file.CRLF)
	}
	if _, err := f.LoadFS(mem, "/p/missing.json"); err == nil {
		t.Error("missing file loaded")
	}
}

func TestDisplayPath(t *testing.T) {
	base := t.TempDir()
	fs := NewFileSetWithBase(base)
	inside := fs.Get(fs.Add(filepath.Join(base, "src", "a.js"), nil))
	outside := fs.Get(fs.Add(filepath.Join(filepath.Dir(base), "other", "b.js"), nil))

	if got := inside.DisplayPath("relative", fs.BaseDir()); got != "src/a.js" {
		t.Errorf("inside = %q", got)
	}
	if got := outside.DisplayPath("relative", fs.BaseDir()); got != outside.Path {
		t.Errorf("outside = %q, want the loaded path", got)
	}
	if got := inside.DisplayPath("basename", ""); got != "a.js" {
		t.Errorf("basename = %q", got)
	}
}
