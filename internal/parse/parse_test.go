package parse

import (
	"context"
	"errors"
	"testing"

	"weblint/internal/syntax"
	"weblint/internal/testkit"
)

func mustParse(t *testing.T, lang syntax.Language, text string) *Result {
	t.Helper()
	res, err := Text(context.Background(), lang, 0, text)
	if err != nil {
		t.Fatalf("parse %q: %v", text, err)
	}
	if err := testkit.CheckTreeInvariants(res.Tree); err != nil {
		t.Fatalf("invariants for %q: %v", text, err)
	}
	return res
}

func findKind(root *syntax.Node, kind syntax.Kind) *syntax.Node {
	for n := range root.Descendants() {
		if n.Kind() == kind {
			return n
		}
	}
	return nil
}

func TestParseLosslessSamples(t *testing.T) {
	samples := []struct {
		lang syntax.Language
		text string
	}{
		{syntax.LangJavaScript, ""},
		{syntax.LangJavaScript, "let x = 1;"},
		{syntax.LangJavaScript, "// a\n/* b */\nfunction f(a, b) {\n  return a == b; // c\n}\n"},
		{syntax.LangJavaScript, "const s = `a ${b} c`;\nconst r = /x+/g;\n"},
		{syntax.LangJSX, "const el = <ul>{items.map(i => <li>{i}</li>)}</ul>;\n"},
		{syntax.LangTypeScript, "export async function f(x: number): Promise<void> {}\n"},
		{syntax.LangTSX, "export const A = (p: {a: string}) => <div a={p.a} />;\n"},
		{syntax.LangCSS, "/* c */\na { color: red; color: blue; }\n"},
		{syntax.LangHTML, "<!-- c -->\n<p class=\"x\">hi</p>\n"},
		{syntax.LangJavaScript, "let = ;\n"},
		{syntax.LangJavaScript, "\xEF\xBB\xBFlet\r\nx\r\n"},
	}
	for _, s := range samples {
		mustParse(t, s.lang, s.text)
	}
}

func TestDeclaratorSlots(t *testing.T) {
	res := mustParse(t, syntax.LangJavaScript, "let x = 1;")
	if k := res.Tree.Root().Kind(); k != "program" {
		t.Fatalf("root kind = %q", k)
	}
	decl := findKind(res.Tree.Root(), "variable_declarator")
	if decl == nil {
		t.Fatal("no variable_declarator")
	}
	if decl.SlotText("name") != "x" || decl.SlotText("value") != "1" {
		t.Errorf("name=%q value=%q", decl.SlotText("name"), decl.SlotText("value"))
	}
	if len(res.Diagnostics) != 0 || res.Tree.HasErrors() {
		t.Errorf("unexpected errors: %+v", res.Diagnostics)
	}
}

func TestCommentsBecomeTrivia(t *testing.T) {
	res := mustParse(t, syntax.LangJavaScript, "// biome-ignore lint: test\ndebugger;\n")
	first := res.Tree.Tokens()[0]
	if first.Text() != "debugger" {
		t.Fatalf("first token = %q", first.Text())
	}
	if !first.HasLeadingComments() {
		t.Errorf("comment not attached as leading trivia: %+v", first.Leading())
	}
	for n := range res.Tree.Root().Descendants() {
		if n.Kind() == "comment" {
			t.Fatalf("comment survived as a node")
		}
	}
}

func TestSyntaxErrorsAreReported(t *testing.T) {
	res := mustParse(t, syntax.LangJavaScript, "let = ;\n")
	if !res.Tree.HasErrors() {
		t.Errorf("tree must be flagged")
	}
	if len(res.Diagnostics) == 0 {
		t.Fatalf("expected parse diagnostics")
	}
	if res.Diagnostics[0].Category != "parse" {
		t.Errorf("category = %q", res.Diagnostics[0].Category)
	}
}

func TestCSSDeclarations(t *testing.T) {
	res := mustParse(t, syntax.LangCSS, "a { color: red; color: blue; }")
	count := 0
	for n := range res.Tree.Root().Descendants() {
		if n.Kind() == "declaration" {
			count++
		}
	}
	if count != 2 {
		t.Errorf("declarations = %d, want 2", count)
	}
}

func TestUnsupportedLanguage(t *testing.T) {
	_, err := Text(context.Background(), syntax.LangJSON, 0, "{}")
	if !errors.Is(err, ErrUnsupportedLanguage) {
		t.Fatalf("expected ErrUnsupportedLanguage, got %v", err)
	}
	if Supported(syntax.LangGraphQL) || !Supported(syntax.LangTSX) {
		t.Errorf("Supported mismatch")
	}
}
