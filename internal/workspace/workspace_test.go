package workspace

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/afero"

	"weblint/internal/config"
	"weblint/internal/diag"
	"weblint/internal/fix"
	"weblint/internal/project"
	"weblint/internal/rules"
	"weblint/internal/source"
)

const root = "/proj"

func newTestWorkspace(t *testing.T, files map[string]string, mutate func(*Options)) (*Workspace, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	if err := fsys.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, text := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := afero.WriteFile(fsys, p, []byte(text), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	reg := rules.Registry()
	fileSet := source.NewFileSetWithBase(root)
	loaded, err := config.NewLoader(fsys, fileSet, reg).Load(root, nil)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	opts := Options{Fs: fsys, Registry: reg, Config: loaded, Files: fileSet, Metrics: NewMetrics(nil)}
	if mutate != nil {
		mutate(&opts)
	}
	w, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	return w, fsys
}

func hasCategory(diags []diag.Diagnostic, cat diag.Category) bool {
	for _, d := range diags {
		if d.Category == cat {
			return true
		}
	}
	return false
}

func TestLintAllKeepsInputOrder(t *testing.T) {
	w, _ := newTestWorkspace(t, map[string]string{
		"src/a.js":   "debugger;\n",
		"src/b.ts":   "const x = 1;\nexport { x };\n",
		"styles.css": "a { color: red; color: blue; }\n",
		"README.md":  "# readme\n",
	}, nil)
	paths, err := w.Collect(nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(root, "src", "a.js"),
		filepath.Join(root, "src", "b.ts"),
		filepath.Join(root, "styles.css"),
	}
	if len(paths) != len(want) {
		t.Fatalf("collected %v", paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("paths[%d] = %s, want %s", i, paths[i], want[i])
		}
	}
	results, err := w.LintAll(context.Background(), paths, LintOptions{Jobs: 2})
	if err != nil {
		t.Fatal(err)
	}
	for i, r := range results {
		if r.Path != paths[i] {
			t.Fatalf("results[%d].Path = %s", i, r.Path)
		}
		if r.Err != nil {
			t.Fatalf("%s: %v", r.Path, r.Err)
		}
	}
	if !hasCategory(results[0].Diagnostics, "lint/suspicious/noDebugger") {
		t.Errorf("a.js: missing noDebugger in %+v", results[0].Diagnostics)
	}
	if len(results[1].Diagnostics) != 0 {
		t.Errorf("b.ts: unexpected diagnostics %+v", results[1].Diagnostics)
	}
	if !hasCategory(results[2].Diagnostics, "lint/suspicious/noDuplicateProperties") {
		t.Errorf("styles.css: missing noDuplicateProperties in %+v", results[2].Diagnostics)
	}
}

func TestCollectSkipsIgnored(t *testing.T) {
	w, _ := newTestWorkspace(t, map[string]string{
		"biome.json":                `{"files": {"includes": ["**", "!**/dist/**"]}}`,
		"src/a.js":                  "a;\n",
		"dist/bundle.js":            "b;\n",
		"node_modules/pkg/index.js": "c;\n",
	}, nil)
	paths, err := w.Collect(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 || paths[0] != filepath.Join(root, "src", "a.js") {
		t.Fatalf("collected %v", paths)
	}
}

func TestOpenDocumentWinsOverDisk(t *testing.T) {
	w, _ := newTestWorkspace(t, map[string]string{"a.js": "a;\n"}, nil)
	doc := w.Open("a.js", []byte("debugger;\n"))
	if doc.Version != 1 {
		t.Fatalf("version = %d", doc.Version)
	}
	res := w.LintFile(context.Background(), "a.js", LintOptions{})
	if !hasCategory(res.Diagnostics, "lint/suspicious/noDebugger") {
		t.Fatalf("document content not analyzed: %+v", res.Diagnostics)
	}
	w.Close("a.js")
	res = w.LintFile(context.Background(), "a.js", LintOptions{})
	if len(res.Diagnostics) != 0 {
		t.Fatalf("disk content expected after Close: %+v", res.Diagnostics)
	}
	if again := w.Open("a.js", nil); again.Version != 1 {
		t.Fatalf("reopened version = %d", again.Version)
	}
}

func TestUnsupportedLanguage(t *testing.T) {
	w, _ := newTestWorkspace(t, map[string]string{"data.json": "{}"}, nil)
	res := w.LintFile(context.Background(), "data.json", LintOptions{})
	if !errors.Is(res.Err, ErrUnsupportedLanguage) {
		t.Fatalf("err = %v", res.Err)
	}
	if !res.HasErrors() {
		t.Fatal("a failed file must count as an error")
	}
}

func TestDiskCacheHit(t *testing.T) {
	cacheFs := afero.NewMemMapFs()
	cache, err := OpenDiskCache(cacheFs, "/cache/weblint")
	if err != nil {
		t.Fatal(err)
	}
	w, _ := newTestWorkspace(t, map[string]string{"a.js": "debugger;\n"}, func(o *Options) { o.Cache = cache })
	first := w.LintFile(context.Background(), "a.js", LintOptions{})
	if first.Cached {
		t.Fatal("first run cannot be cached")
	}
	second := w.LintFile(context.Background(), "a.js", LintOptions{})
	if !second.Cached {
		t.Fatal("second run should hit the cache")
	}
	if len(second.Diagnostics) != len(first.Diagnostics) || second.Actions != first.Actions {
		t.Fatalf("cached result differs: %+v vs %+v", second, first)
	}
	if second.Diagnostics[0].Primary.File != second.File {
		t.Fatal("cached spans must point at the current file")
	}
	if err := cache.DropAll(); err != nil {
		t.Fatal(err)
	}
	if third := w.LintFile(context.Background(), "a.js", LintOptions{}); third.Cached {
		t.Fatal("cache should be empty after DropAll")
	}
}

func TestDiskCacheIgnoresForeignEntries(t *testing.T) {
	fsys := afero.NewMemMapFs()
	cache, err := OpenDiskCache(fsys, "/c")
	if err != nil {
		t.Fatal(err)
	}
	key := project.NewKey().String("a.js").Sum()
	if err := cache.Put(key, &CachedResult{Path: "a.js", Actions: 2}); err != nil {
		t.Fatal(err)
	}
	var got CachedResult
	if hit, err := cache.Get(key, &got); err != nil || !hit || got.Actions != 2 {
		t.Fatalf("Get() = %v, %v, %+v", hit, err, got)
	}
	// запись старого формата
	if err := afero.WriteFile(fsys, cache.entryPath(key), []byte("wlc\x01junk"), 0o644); err != nil {
		t.Fatal(err)
	}
	if hit, err := cache.Get(key, &got); hit || err != nil {
		t.Fatalf("foreign entry: hit=%v err=%v", hit, err)
	}
}

func TestFixWritesFiles(t *testing.T) {
	w, fsys := newTestWorkspace(t, map[string]string{"a.js": "var a = 1;\nf(a);\n"}, nil)
	results, err := w.LintAll(context.Background(), []string{"a.js"}, LintOptions{
		Fix:     true,
		FixMode: fix.SafeAndUnsafeFixes,
		Write:   true,
	})
	if err != nil {
		t.Fatal(err)
	}
	r := results[0]
	if r.Err != nil || !r.Written {
		t.Fatalf("err=%v written=%v", r.Err, r.Written)
	}
	data, _ := afero.ReadFile(fsys, filepath.Join(root, "a.js"))
	if string(data) != "const a = 1;\nf(a);\n" {
		t.Fatalf("file = %q", data)
	}
	if r.Original != "var a = 1;\nf(a);\n" {
		t.Fatalf("original = %q", r.Original)
	}
}

func TestFixDryRunLeavesDisk(t *testing.T) {
	w, fsys := newTestWorkspace(t, map[string]string{"a.js": "var a = 1;\nf(a);\n"}, nil)
	results, _ := w.LintAll(context.Background(), []string{"a.js"}, LintOptions{Fix: true, FixMode: fix.SafeAndUnsafeFixes})
	if results[0].Written || !results[0].Fix.Changed() {
		t.Fatalf("dry run: written=%v changed=%v", results[0].Written, results[0].Fix.Changed())
	}
	data, _ := afero.ReadFile(fsys, filepath.Join(root, "a.js"))
	if string(data) != "var a = 1;\nf(a);\n" {
		t.Fatalf("dry run modified the file: %q", data)
	}
}

func TestManifestDomains(t *testing.T) {
	w, _ := newTestWorkspace(t, map[string]string{
		"package.json": `{"devDependencies": {"vitest": "^1.0.0"}}`,
		"a.test.js":    "it.only('x', () => {});\n",
	}, nil)
	res := w.LintFile(context.Background(), "a.test.js", LintOptions{})
	if !hasCategory(res.Diagnostics, "lint/suspicious/noFocusedTests") {
		t.Fatalf("test domain not detected: %+v", res.Diagnostics)
	}
}

func TestSettingsCached(t *testing.T) {
	w, _ := newTestWorkspace(t, map[string]string{"a.js": "", "b.js": ""}, nil)
	lang, err := Language("a.js")
	if err != nil {
		t.Fatal(err)
	}
	if w.Settings("a.js", lang) != w.Settings("b.js", lang) {
		t.Fatal("paths with the same overrides should share settings")
	}
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) OnEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

func TestProgressEvents(t *testing.T) {
	sink := &recordingSink{}
	w, _ := newTestWorkspace(t, map[string]string{"a.js": "a;\n"}, func(o *Options) { o.Progress = sink })
	if _, err := w.LintAll(context.Background(), []string{"a.js"}, LintOptions{}); err != nil {
		t.Fatal(err)
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.events) < 3 {
		t.Fatalf("events = %+v", sink.events)
	}
	if first := sink.events[0]; first.Phase != PhaseQueued {
		t.Fatalf("first event = %+v", first)
	}
	if last := sink.events[len(sink.events)-1]; last.File != "" || last.Phase != PhaseDone {
		t.Fatalf("last event = %+v", last)
	}
}

func TestLintAllCancelled(t *testing.T) {
	w, _ := newTestWorkspace(t, map[string]string{"a.js": "a;\n"}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := w.LintAll(ctx, []string{"a.js"}, LintOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestOverrideTurnsRuleOffUnderTests(t *testing.T) {
	w, _ := newTestWorkspace(t, map[string]string{
		"biome.json": `{"overrides": [{"includes": ["**/tests/**"], "linter": {"rules": {"correctness": {"noUnusedVariables": "off"}}}}]}`,
		"tests/a.js": "let x = 1;\n",
		"src/a.js":   "let x = 1;\n",
	}, nil)
	const unused = diag.Category("lint/correctness/noUnusedVariables")

	res := w.LintFile(context.Background(), "tests/a.js", LintOptions{})
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	if hasCategory(res.Diagnostics, unused) {
		t.Fatalf("tests/a.js: rule should be off, got %+v", res.Diagnostics)
	}

	res = w.LintFile(context.Background(), "src/a.js", LintOptions{})
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	var found *diag.Diagnostic
	for i := range res.Diagnostics {
		if res.Diagnostics[i].Category == unused {
			found = &res.Diagnostics[i]
		}
	}
	if found == nil {
		t.Fatalf("src/a.js: missing noUnusedVariables in %+v", res.Diagnostics)
	}
	if found.Severity != diag.SevError {
		t.Errorf("severity = %v, want error", found.Severity)
	}
	if found.Primary.Start != 4 || found.Primary.End != 5 {
		t.Errorf("span = %d..%d, want 4..5", found.Primary.Start, found.Primary.End)
	}
}

func TestMergedConfigErrorsReportedOnce(t *testing.T) {
	w, _ := newTestWorkspace(t, map[string]string{
		"biome.json": `{"linter": {"rules": {"correctness": {"recommended": true}}},
			"overrides": [{"includes": ["**/tests/**"], "linter": {"rules": {"correctness": {"all": true}}}}]}`,
		"tests/a.js": "",
		"tests/b.js": "",
		"src/c.js":   "",
	}, nil)
	lang, err := Language("a.js")
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{"tests/a.js", "tests/b.js", "src/c.js"} {
		w.Settings(p, lang)
	}
	diags := w.ConfigDiagnostics()
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %+v", len(diags), diags)
	}
	if diags[0].Message != config.RecommendedAllMessage || !diags[0].IsError() {
		t.Errorf("unexpected diagnostic %+v", diags[0])
	}
}

type shape struct {
	cat        diag.Category
	sev        diag.Severity
	msg        string
	start, end uint32
}

func shapes(results []FileResult) [][]shape {
	out := make([][]shape, len(results))
	for i, r := range results {
		for _, d := range r.Diagnostics {
			out[i] = append(out[i], shape{d.Category, d.Severity, d.Message, d.Primary.Start, d.Primary.End})
		}
	}
	return out
}

func TestLintAllSameOutputForAnyJobs(t *testing.T) {
	files := map[string]string{
		"a.js":        "let x = 1;\ndebugger;\nif (a == b) {}\n",
		"b.ts":        "import { y } from \"y\";\nvar z = 2;\n",
		"c.js":        "function f() { debugger; }\nf();\n",
		"d.css":       "a { color: red; color: blue; }\n",
		"e/f.js":      "const q = 1;\nlet w;\n",
		"e/g.test.js": "describe.only(\"x\", () => {});\n",
	}
	run := func(jobs int) []FileResult {
		w, _ := newTestWorkspace(t, files, nil)
		paths, err := w.Collect(nil)
		if err != nil {
			t.Fatal(err)
		}
		results, err := w.LintAll(context.Background(), paths, LintOptions{Jobs: jobs})
		if err != nil {
			t.Fatal(err)
		}
		return results
	}
	one, many := run(1), run(8)
	if len(one) != len(many) {
		t.Fatalf("%d results vs %d", len(one), len(many))
	}
	for i := range one {
		if one[i].Path != many[i].Path {
			t.Fatalf("results[%d]: %s vs %s", i, one[i].Path, many[i].Path)
		}
	}
	a, b := shapes(one), shapes(many)
	for i := range a {
		if len(a[i]) != len(b[i]) {
			t.Fatalf("%s: %d diagnostics vs %d", one[i].Path, len(a[i]), len(b[i]))
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				t.Errorf("%s[%d]: %+v vs %+v", one[i].Path, j, a[i][j], b[i][j])
			}
		}
	}
}
