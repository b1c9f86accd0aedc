package project

import (
	"crypto/sha256"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

func TestParseManifest(t *testing.T) {
	data := []byte(`{
  "name": "app",
  "version": "1.2.0",
  "type": "module",
  "dependencies": {"react": "^18.2.0"},
  "devDependencies": {"vitest": "latest", "react": "^17.0.0"}
}`)
	m, err := ParseManifest("package.json", data)
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "app" || m.Version != "1.2.0" || !m.IsModule() {
		t.Fatalf("unexpected manifest %+v", m)
	}
	if got := m.Dependencies["react"]; got != "^18.2.0" {
		t.Fatalf("react = %q, dependencies must win over devDependencies", got)
	}
	names := m.DependencyNames()
	if len(names) != 2 || names[0] != "react" || names[1] != "vitest" {
		t.Fatalf("names = %v", names)
	}
	if m.Digest.IsZero() {
		t.Fatal("digest not computed")
	}
}

func TestParseManifestDefaults(t *testing.T) {
	m, err := ParseManifest("package.json", []byte(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	if m.Type != "commonjs" || len(m.Dependencies) != 0 {
		t.Fatalf("unexpected defaults %+v", m)
	}
}

func TestParseManifestInvalid(t *testing.T) {
	for _, src := range []string{`[1, 2]`, `{"name":`, `"app"`} {
		if _, err := ParseManifest("package.json", []byte(src)); !errors.Is(err, ErrInvalidManifest) {
			t.Errorf("%s: err = %v", src, err)
		}
	}
}

func TestFindManifestWalksUp(t *testing.T) {
	fsys := afero.NewMemMapFs()
	root := filepath.FromSlash("/work/app")
	want := filepath.Join(root, ManifestName)
	if err := afero.WriteFile(fsys, want, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "src", "components")
	got, err := FindManifest(fsys, nested)
	if err != nil || got != want {
		t.Fatalf("FindManifest = %q, %v; want %q", got, err, want)
	}
	if _, err := FindManifest(afero.NewMemMapFs(), nested); !errors.Is(err, ErrNoManifest) {
		t.Fatalf("err = %v, want ErrNoManifest", err)
	}
}

func TestAncestorsStopsAtRoot(t *testing.T) {
	var dirs []string
	for d := range Ancestors(filepath.FromSlash("/a/b")) {
		dirs = append(dirs, filepath.ToSlash(d))
	}
	if len(dirs) < 3 || dirs[0] != "/a/b" || dirs[1] != "/a" {
		t.Fatalf("dirs = %v", dirs)
	}
	for range Ancestors("/a/b") {
		break
	}
}

func TestKeyParts(t *testing.T) {
	a := NewKey().String("ab").String("c").Sum()
	b := NewKey().String("a").String("bc").Sum()
	if a == b {
		t.Fatal("string boundaries must change the key")
	}
	content := Digest(sha256.Sum256([]byte("debugger;")))
	if NewKey().Digest(content).String("x").Sum() != NewKey().Digest(content).String("x").Sum() {
		t.Fatal("keys must be deterministic")
	}
	if NewKey().Sum().IsZero() || len(a.String()) != 64 {
		t.Fatalf("digest = %s", a)
	}
}
