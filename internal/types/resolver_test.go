package types

import (
	"context"
	"testing"

	"weblint/internal/parse"
	"weblint/internal/semantic"
	"weblint/internal/syntax"
)

func resolver(t *testing.T, lang syntax.Language, src string) (*Resolver, *semantic.Model) {
	t.Helper()
	res, err := parse.Text(context.Background(), lang, 0, src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	m := semantic.Build(res.Tree, semantic.Options{})
	return NewResolver(m), m
}

func bindingType(t *testing.T, r *Resolver, m *semantic.Model, name string) ResolvedTypeID {
	t.Helper()
	for i := range m.Bindings() {
		if b := m.Binding(semantic.BindingID(i)); b.Name == name {
			return r.TypeOfBinding(b.ID)
		}
	}
	t.Fatalf("no binding %q", name)
	return ResolvedTypeID{}
}

func TestCatalogIsShared(t *testing.T) {
	a, b := Global(), Global()
	if a != b {
		t.Fatal("catalog must be built once")
	}
	if a.Unknown != (ResolvedTypeID{Level: LevelGlobal, ID: 0}) {
		t.Fatalf("unknown = %+v", a.Unknown)
	}
	u, _ := a.Lookup(a.TypeofUnion.ID)
	if u.Kind != KindUnion || len(u.Members) != len(TypeofNames) {
		t.Fatalf("typeof union = %+v", u)
	}
	if !a.IsTypeofName("bigint") || a.IsTypeofName("strnig") {
		t.Fatal("typeof names")
	}
}

func TestInternerDeduplicatesDescriptors(t *testing.T) {
	in := NewInterner(LevelLocal)
	g := Global()
	p1 := in.Intern(Type{Kind: KindPromise, Elem: g.Number})
	p2 := in.Intern(Type{Kind: KindPromise, Elem: g.Number})
	p3 := in.Intern(Type{Kind: KindPromise, Elem: g.String})
	if p1 != p2 || p1 == p3 {
		t.Fatalf("ids: %v %v %v", p1, p2, p3)
	}
	if p1.Level != LevelLocal {
		t.Fatalf("level = %s", p1.Level)
	}
}

func TestLiteralInitializers(t *testing.T) {
	src := "const n = 1;\nconst s = 'a' + n;\nconst b = !n;\nconst r = /x/;\nconst a = [1];\nconst u = undefined;\nlet v;\n"
	r, m := resolver(t, syntax.LangJavaScript, src)
	g := r.Catalog()
	want := map[string]ResolvedTypeID{
		"n": g.Number, "s": g.String, "b": g.Boolean, "r": g.RegExp,
		"a": g.Array, "u": g.Undefined, "v": g.Undefined,
	}
	for name, id := range want {
		if got := bindingType(t, r, m, name); got != id {
			t.Errorf("%s: got %s, want %s", name, r.String(got), r.String(id))
		}
	}
}

func TestPromiseInference(t *testing.T) {
	src := "async function load() {}\n" +
		"function get() { return fetch('/x'); }\n" +
		"const p = new Promise((resolve) => resolve());\n" +
		"const q = p.then(() => 1);\n" +
		"const all = Promise.all([p, q]);\n" +
		"load();\nget();\n"
	r, m := resolver(t, syntax.LangJavaScript, src)
	for _, name := range []string{"p", "q", "all"} {
		if id := bindingType(t, r, m, name); !r.IsPromise(id) {
			t.Errorf("%s: %s is not a promise", name, r.String(id))
		}
	}
	for call := range m.Tree().Root().Descendants() {
		if call.Kind() != "expression_statement" {
			continue
		}
		if expr := call.ChildNodes(); len(expr) == 1 && expr[0].Kind() == "call_expression" {
			if id := r.TypeOf(expr[0]); !r.IsPromise(id) {
				t.Errorf("%s: %s is not a promise", expr[0].Text(), r.String(id))
			}
		}
	}
	if s := r.String(bindingType(t, r, m, "load")); s != "() => Promise<unknown>" {
		t.Fatalf("load = %s", s)
	}
}

func TestCallbackParameterShapes(t *testing.T) {
	src := "new Promise((res, rej) => res());\n[1].map((v, i, arr) => i);\n"
	r, m := resolver(t, syntax.LangJavaScript, src)
	g := r.Catalog()
	if id := bindingType(t, r, m, "res"); id != g.VoidCallback {
		t.Errorf("res = %s", r.String(id))
	}
	if id := bindingType(t, r, m, "i"); id != g.Number {
		t.Errorf("i = %s", r.String(id))
	}
	if id := bindingType(t, r, m, "arr"); !r.IsArray(id) {
		t.Errorf("arr = %s", r.String(id))
	}
	if id := bindingType(t, r, m, "v"); !r.IsUnknown(id) {
		t.Errorf("v = %s", r.String(id))
	}
}

func TestAnnotationsAndTypeof(t *testing.T) {
	src := "let a: string[];\nlet p: Promise<number>;\nfunction f(x: boolean) { return typeof x; }\nconst t = typeof a;\n"
	r, m := resolver(t, syntax.LangTypeScript, src)
	g := r.Catalog()
	if s := r.String(bindingType(t, r, m, "a")); s != "Array<string>" {
		t.Errorf("a = %s", s)
	}
	if s := r.String(bindingType(t, r, m, "p")); s != "Promise<number>" {
		t.Errorf("p = %s", s)
	}
	if id := bindingType(t, r, m, "x"); id != g.Boolean {
		t.Errorf("x = %s", r.String(id))
	}
	if id := bindingType(t, r, m, "t"); id != g.TypeofUnion {
		t.Errorf("t = %s", r.String(id))
	}
}

func TestRecursiveBindingsTerminate(t *testing.T) {
	src := "function f() { return f(); }\nconst a = b, b = a;\n"
	r, m := resolver(t, syntax.LangJavaScript, src)
	if s := r.String(bindingType(t, r, m, "f")); s != "() => unknown" {
		t.Errorf("f = %s", s)
	}
	if id := bindingType(t, r, m, "a"); !r.IsUnknown(id) {
		t.Errorf("a = %s", r.String(id))
	}
}
