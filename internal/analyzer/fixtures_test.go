package analyzer

import (
	"context"
	"testing"

	"weblint/internal/config"
	"weblint/internal/diag"
	"weblint/internal/parse"
	"weblint/internal/source"
	"weblint/internal/syntax"
)

// Rules below are small stand-ins for the shipped rule set; they keep the
// driver tests independent of internal/rules.

var testNoDebugger = &TypedRule[*syntax.Node, NoOptions]{
	Meta: RuleMetadata{
		Name: "noDebugger", Group: "suspicious", Language: "js",
		Recommended: true, Fix: FixSafe,
		Sources: []RuleSource{{Tool: "eslint", ID: "no-debugger"}},
	},
	On: Ast("debugger_statement"),
	RunFunc: func(ctx *RuleContext, _ *NoOptions) (*syntax.Node, bool) {
		return ctx.Node(), true
	},
	DiagnosticFunc: func(ctx *RuleContext, n *syntax.Node) *RuleDiagnostic {
		return NewRuleDiagnostic(n.Range(), "This is an unexpected use of the debugger statement.")
	},
	ActionFunc: func(ctx *RuleContext, n *syntax.Node, _ *NoOptions) *RuleAction {
		m := ctx.NewMutation()
		m.Remove(n)
		return NewRuleAction("Remove debugger statement", m)
	},
}

var testNoDoubleEquals = &TypedRule[*syntax.Token, NoOptions]{
	Meta: RuleMetadata{
		Name: "noDoubleEquals", Group: "suspicious", Language: "js",
		Recommended: true, Fix: FixUnsafe,
	},
	On: Ast("=="),
	RunFunc: func(ctx *RuleContext, _ *NoOptions) (*syntax.Token, bool) {
		return ctx.Token(), ctx.Token() != nil
	},
	DiagnosticFunc: func(ctx *RuleContext, tok *syntax.Token) *RuleDiagnostic {
		return NewRuleDiagnostic(tok.Range(), "Use === instead of ==.")
	},
	ActionFunc: func(ctx *RuleContext, tok *syntax.Token, _ *NoOptions) *RuleAction {
		m := ctx.NewMutation()
		m.Replace(tok, "===")
		return NewRuleAction("Use ===", m)
	},
}

var testNoPanic = &TypedRule[struct{}, NoOptions]{
	Meta: RuleMetadata{Name: "noPanic", Group: "nursery", Language: "js"},
	On:   Ast("debugger_statement"),
	RunFunc: func(*RuleContext, *NoOptions) (struct{}, bool) {
		panic("boom")
	},
	DiagnosticFunc: func(*RuleContext, struct{}) *RuleDiagnostic { return nil },
}

var testNoUndeclared = &TypedRule[*syntax.Token, NoOptions]{
	Meta: RuleMetadata{
		Name: "noUndeclaredVariables", Group: "correctness", Language: "js",
		Recommended: true,
	},
	On: Semantic("identifier"),
	RunFunc: func(ctx *RuleContext, _ *NoOptions) (*syntax.Token, bool) {
		tok := ctx.Token()
		if tok == nil {
			return nil, false
		}
		model := ctx.Semantic()
		ref, ok := model.ReferenceOf(tok)
		if !ok || ref.Resolved() || model.IsGlobal(tok.Text()) {
			return nil, false
		}
		return tok, true
	},
	DiagnosticFunc: func(ctx *RuleContext, tok *syntax.Token) *RuleDiagnostic {
		return NewRuleDiagnostic(tok.Range(), "The "+tok.Text()+" variable is undeclared.")
	},
}

var testNoFocusedTests = &TypedRule[*syntax.Node, NoOptions]{
	Meta: RuleMetadata{
		Name: "noFocusedTests", Group: "suspicious", Language: "js",
		Recommended: true, Domains: Domains(DomainTest),
	},
	On: Ast("member_expression"),
	RunFunc: func(ctx *RuleContext, _ *NoOptions) (*syntax.Node, bool) {
		t := ctx.Node().Text()
		return ctx.Node(), t == "it.only" || t == "describe.only"
	},
	DiagnosticFunc: func(ctx *RuleContext, n *syntax.Node) *RuleDiagnostic {
		return NewRuleDiagnostic(n.Range(), "Don't focus the test.")
	},
}

type shortNameOptions struct {
	MinLength int `json:"minLength"`
}

var testNoShortNames = &TypedRule[*syntax.Token, shortNameOptions]{
	Meta: RuleMetadata{Name: "noShortNames", Group: "style", Language: "js"},
	On:   Ast("identifier"),
	RunFunc: func(ctx *RuleContext, o *shortNameOptions) (*syntax.Token, bool) {
		tok := ctx.Token()
		return tok, tok != nil && len(tok.Text()) < o.MinLength
	},
	DiagnosticFunc: func(ctx *RuleContext, tok *syntax.Token) *RuleDiagnostic {
		return NewRuleDiagnostic(tok.Range(), "Name is too short.")
	},
	Defaults: func() *shortNameOptions { return &shortNameOptions{MinLength: 2} },
}

var testNoImportant = &TypedRule[struct{}, NoOptions]{
	Meta:           RuleMetadata{Name: "noImportant", Group: "complexity", Language: "css", Recommended: true},
	On:             Ast("important"),
	RunFunc:        func(*RuleContext, *NoOptions) (struct{}, bool) { return struct{}{}, true },
	DiagnosticFunc: func(ctx *RuleContext, _ struct{}) *RuleDiagnostic { return NewRuleDiagnostic(ctx.Element().Range(), "!important") },
}

var testUseSortedKeys = &TypedRule[struct{}, NoOptions]{
	Meta:    RuleMetadata{Name: "useSortedKeys", Group: "source", Category: CategoryAssist, Language: "js", Recommended: true},
	On:      Ast("object"),
	RunFunc: func(*RuleContext, *NoOptions) (struct{}, bool) { return struct{}{}, false },
}

var testNurseryRecommended = &TypedRule[struct{}, NoOptions]{
	Meta:    RuleMetadata{Name: "noFloating", Group: "nursery", Language: "ts", Recommended: true},
	On:      Semantic("call_expression"),
	RunFunc: func(*RuleContext, *NoOptions) (struct{}, bool) { return struct{}{}, false },
}

func testRegistry() *Registry {
	return NewRegistry(
		testNoDebugger, testNoDoubleEquals, testNoPanic, testNoUndeclared,
		testNoFocusedTests, testNoShortNames, testNoImportant,
		testUseSortedKeys, testNurseryRecommended,
	)
}

func mustIndex(t *testing.T, reg *Registry, key string) int {
	t.Helper()
	i, ok := reg.Lookup(key)
	if !ok {
		t.Fatalf("rule %s not registered", key)
	}
	return i
}

func parseConfig(t *testing.T, reg *Registry, src string) *config.Configuration {
	t.Helper()
	if src == "" {
		return &config.Configuration{}
	}
	cfg, _, diags := config.Parse([]byte(src), config.ParseOptions{Catalog: reg})
	for _, d := range diags {
		if d.IsError() {
			t.Fatalf("config %s: %s", src, d.Message)
		}
	}
	return cfg
}

type analyzeCase struct {
	lang   syntax.Language
	text   string
	config string
	env    Environment
	input  func(*Input)
}

func runAnalyze(t *testing.T, reg *Registry, c analyzeCase) Result {
	t.Helper()
	return runAnalyzeCtx(context.Background(), t, reg, c)
}

func runAnalyzeCtx(ctx context.Context, t *testing.T, reg *Registry, c analyzeCase) Result {
	t.Helper()
	if c.lang == syntax.LangUnknown {
		c.lang = syntax.LangJavaScript
	}
	res, err := parse.Text(context.Background(), c.lang, 1, c.text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	settings := ResolveSettings(reg, parseConfig(t, reg, c.config), c.lang, c.env)
	in := Input{
		Tree:     res.Tree,
		File:     &source.File{ID: 1, Path: "test.js", Content: []byte(c.text)},
		Settings: settings,
	}
	if c.input != nil {
		c.input(&in)
	}
	return Analyze(ctx, in)
}

func categories(diags []diag.Diagnostic) []string {
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		out = append(out, string(d.Category))
	}
	return out
}

func countCategory(diags []diag.Diagnostic, cat diag.Category) int {
	n := 0
	for _, d := range diags {
		if d.Category == cat {
			n++
		}
	}
	return n
}
