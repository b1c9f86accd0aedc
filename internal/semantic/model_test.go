package semantic

import (
	"context"
	"testing"

	"github.com/spf13/afero"

	"weblint/internal/parse"
	"weblint/internal/syntax"
)

func build(t *testing.T, lang syntax.Language, text string, opts Options) *Model {
	t.Helper()
	res, err := parse.Text(context.Background(), lang, 0, text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return Build(res.Tree, opts)
}

func binding(t *testing.T, m *Model, name string) *Binding {
	t.Helper()
	for i := range m.Bindings() {
		if b := m.Binding(BindingID(i)); b.Name == name {
			return b
		}
	}
	t.Fatalf("no binding %q", name)
	return nil
}

func TestUnusedAndUsedBindings(t *testing.T) {
	m := build(t, syntax.LangJavaScript, "let x = 1;\nlet y = 2;\nconsole.log(y);\n", Options{})
	x, y := binding(t, m, "x"), binding(t, m, "y")
	if n := len(m.References(x.ID)); n != 0 {
		t.Fatalf("x refs = %d", n)
	}
	if n := len(m.Reads(y.ID)); n != 1 {
		t.Fatalf("y reads = %d", n)
	}
	if x.Kind != BindLet || x.Scope != m.ModuleScope().ID {
		t.Fatalf("x = %+v", x)
	}
	unresolved := m.Unresolved()
	if len(unresolved) != 1 || unresolved[0].Name() != "console" {
		t.Fatalf("unresolved = %v", unresolved)
	}
}

func TestVarHoistsToFunctionScope(t *testing.T) {
	src := "function f() {\n  if (a) { var v = 1; let l = 2; }\n  return v;\n}\n"
	m := build(t, syntax.LangJavaScript, src, Options{})
	v, l := binding(t, m, "v"), binding(t, m, "l")
	if k := m.Scope(v.Scope).Kind; k != ScopeFunction {
		t.Fatalf("v scope = %s", k)
	}
	if k := m.Scope(l.Scope).Kind; k != ScopeBlock {
		t.Fatalf("l scope = %s", k)
	}
	if len(m.Reads(v.ID)) != 1 {
		t.Fatal("return v should resolve to the hoisted var")
	}
	f := binding(t, m, "f")
	if !f.Hoisted || f.Kind != BindFunction {
		t.Fatalf("f = %+v", f)
	}
}

func TestShadowingResolvesInnermost(t *testing.T) {
	src := "const a = 1;\nfunction g(a) { return a; }\ng(a);\n"
	m := build(t, syntax.LangJavaScript, src, Options{})
	var outer, param *Binding
	for i := range m.Bindings() {
		b := m.Binding(BindingID(i))
		if b.Name != "a" {
			continue
		}
		if b.Kind == BindParameter {
			param = b
		} else {
			outer = b
		}
	}
	if outer == nil || param == nil {
		t.Fatal("expected two bindings named a")
	}
	if len(m.Reads(param.ID)) != 1 || len(m.Reads(outer.ID)) != 1 {
		t.Fatalf("param reads %d, outer reads %d", len(m.Reads(param.ID)), len(m.Reads(outer.ID)))
	}
}

func TestWritesAndDestructuring(t *testing.T) {
	src := "let n = 0;\nn += 1;\nn++;\nconst { a, b: c, ...rest } = obj;\n[n] = [c];\n"
	m := build(t, syntax.LangJavaScript, src, Options{})
	n := binding(t, m, "n")
	if got := len(m.Writes(n.ID)); got != 3 {
		t.Fatalf("n writes = %d", got)
	}
	for _, name := range []string{"a", "c", "rest"} {
		if b := binding(t, m, name); b.Kind != BindConst {
			t.Fatalf("%s kind = %s", name, b.Kind)
		}
	}
	if len(m.Reads(binding(t, m, "c").ID)) != 1 {
		t.Fatal("c should be read once")
	}
}

func TestCatchAndForIn(t *testing.T) {
	src := "try {} catch (e) {}\nfor (const k in o) { use(k); }\nlet i;\nfor (i of xs) {}\n"
	m := build(t, syntax.LangJavaScript, src, Options{})
	if b := binding(t, m, "e"); b.Kind != BindCatch {
		t.Fatalf("e kind = %s", b.Kind)
	}
	if b := binding(t, m, "k"); b.Kind != BindConst || len(m.Reads(b.ID)) != 1 {
		t.Fatalf("k = %+v", b)
	}
	if got := len(m.Writes(binding(t, m, "i").ID)); got != 1 {
		t.Fatalf("i writes = %d", got)
	}
}

func TestImportsAndExports(t *testing.T) {
	src := "import def, { a, b as c } from './lib';\nimport * as ns from 'pkg';\n" +
		"export const x = a;\nexport { c as d };\nexport * from './other';\nfunction main() {}\nexport default main;\n"
	m := build(t, syntax.LangJavaScript, src, Options{})

	imps := m.Imports()
	if len(imps) != 2 {
		t.Fatalf("imports = %d", len(imps))
	}
	var locals []string
	for _, n := range imps[0].Names {
		locals = append(locals, n.Imported+">"+n.Local)
	}
	if got := locals; len(got) != 3 || got[0] != "default>def" || got[1] != "a>a" || got[2] != "b>c" {
		t.Fatalf("names = %v", got)
	}
	if imps[1].Specifier != "pkg" || imps[1].Names[0].Imported != "*" {
		t.Fatalf("namespace import = %+v", imps[1])
	}
	if b := binding(t, m, "def"); b.Kind != BindImport || len(m.References(b.ID)) != 0 {
		t.Fatalf("def = %+v", b)
	}
	if len(m.Reads(binding(t, m, "a").ID)) != 1 {
		t.Fatal("a is read by the export initializer")
	}

	got := map[string]Export{}
	for _, e := range m.Exports() {
		got[e.Name] = e
	}
	if e, ok := got["d"]; !ok || e.Local != "c" || e.Binding != binding(t, m, "c").ID {
		t.Fatalf("export d = %+v", e)
	}
	if e, ok := got["*"]; !ok || e.From != "./other" {
		t.Fatalf("export * = %+v", e)
	}
	if _, ok := got["x"]; !ok {
		t.Fatal("missing export x")
	}
	if e, ok := got["default"]; !ok || e.Local != "main" {
		t.Fatalf("export default = %+v", e)
	}
	if !binding(t, m, "x").Exported || !binding(t, m, "c").Exported {
		t.Fatal("exported bindings must be flagged")
	}
}

func TestJSXComponentReferences(t *testing.T) {
	src := "import Button from './b';\nconst el = <div><Button /></div>;\n"
	m := build(t, syntax.LangJSX, src, Options{})
	if len(m.Reads(binding(t, m, "Button").ID)) != 1 {
		t.Fatal("<Button /> should reference the import")
	}
	for _, r := range m.Unresolved() {
		if r.Name() == "div" {
			t.Fatal("intrinsic elements are not references")
		}
	}
}

func TestTypeReferences(t *testing.T) {
	src := "import type { Foo } from './t';\ninterface Bar<T> { f: Foo; t: T }\nlet b: Bar<string>;\n"
	m := build(t, syntax.LangTypeScript, src, Options{})
	foo := binding(t, m, "Foo")
	if len(m.Reads(foo.ID)) != 1 {
		t.Fatal("Foo is used as a type")
	}
	if !m.Imports()[0].TypeOnly {
		t.Fatal("import type should be type-only")
	}
	if len(m.Reads(binding(t, m, "Bar").ID)) != 1 {
		t.Fatal("Bar is used by the annotation")
	}
}

func TestGlobalsAndNonJSTrees(t *testing.T) {
	m := build(t, syntax.LangJavaScript, "describe();\n", Options{Globals: []string{"describe"}})
	if !m.IsGlobal("describe") || m.IsGlobal("it") {
		t.Fatal("globals not applied")
	}
	css := build(t, syntax.LangCSS, "/* c */ a { color: red }\n", Options{})
	if len(css.Bindings()) != 0 || css.Comments().Len() != 1 {
		t.Fatalf("css model: %d bindings, %d comments", len(css.Bindings()), css.Comments().Len())
	}
}

func TestJsDocForExportedDeclaration(t *testing.T) {
	src := "/**\n * Adds numbers.\n */\nexport function add(a, b) { return a + b; }\n// plain\nfunction sub() {}\n"
	m := build(t, syntax.LangJavaScript, src, Options{})
	doc, ok := m.JsDocFor(binding(t, m, "add").Decl)
	if !ok || doc != "Adds numbers." {
		t.Fatalf("doc = %q, %v", doc, ok)
	}
	if _, ok := m.JsDocFor(binding(t, m, "sub").Decl); ok {
		t.Fatal("line comments are not JSDoc")
	}
}

func TestResolveRelativeImports(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, p := range []string{"/p/src/util.ts", "/p/src/lib/index.tsx", "/p/src/esm.ts"} {
		if err := afero.WriteFile(fs, p, []byte("export {}\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	src := "import a from './util';\nimport b from './lib';\nimport c from './esm.js';\nimport d from 'react';\nimport e from './missing';\n"
	m := build(t, syntax.LangTypeScript, src, Options{Fs: fs, Path: "/p/src/main.ts"})
	want := []string{"/p/src/util.ts", "/p/src/lib/index.tsx", "/p/src/esm.ts", "", ""}
	for i, imp := range m.Imports() {
		if imp.Resolved != want[i] {
			t.Errorf("%s resolved to %q, want %q", imp.Specifier, imp.Resolved, want[i])
		}
	}
}
