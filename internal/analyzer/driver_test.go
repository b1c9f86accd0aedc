package analyzer

import (
	"context"
	"slices"
	"strings"
	"testing"

	"weblint/internal/diag"
	"weblint/internal/syntax"
)

const declared = "let a = 1, b = 2;\n"

func TestAnalyzeOrderAndActions(t *testing.T) {
	reg := testRegistry()
	res := runAnalyze(t, reg, analyzeCase{text: declared + "debugger;\nif (a == b) { c(); }\n"})

	want := []string{
		"lint/suspicious/noDebugger",
		"lint/suspicious/noDoubleEquals",
		"lint/correctness/noUndeclaredVariables",
	}
	if got := categories(res.Diagnostics); !slices.Equal(got, want) {
		t.Fatalf("categories:\n got %v\nwant %v", got, want)
	}
	dbg := res.Diagnostics[0]
	if dbg.Severity != diag.SevError || dbg.Rule != "suspicious/noDebugger" || dbg.Source != "eslint/no-debugger" {
		t.Errorf("noDebugger diagnostic = %+v", dbg)
	}
	if !dbg.Tags.Has(diag.TagFixable) || !res.Diagnostics[1].Tags.Has(diag.TagFixable) {
		t.Errorf("fixable diagnostics should be tagged")
	}
	if !strings.Contains(res.Diagnostics[2].Message, "c variable") {
		t.Errorf("undeclared message = %q", res.Diagnostics[2].Message)
	}

	// the unsafe == fix is withheld
	if len(res.Actions) != 1 {
		t.Fatalf("actions = %d, want 1", len(res.Actions))
	}
	act := res.Actions[0]
	if act.Applicability != Always || act.Category.String() != "quickfix.suspicious.noDebugger" || act.Diagnostic != 0 {
		t.Errorf("action = %+v", act)
	}
	out, err := act.Mutation.Commit()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "debugger") {
		t.Errorf("fix left the statement: %q", out)
	}
}

func TestAnalyzeUnsafeActions(t *testing.T) {
	reg := testRegistry()
	res := runAnalyze(t, reg, analyzeCase{
		text:  declared + "debugger;\nif (a == b) {}\n",
		input: func(in *Input) { in.Unsafe = true },
	})
	if len(res.Actions) != 2 {
		t.Fatalf("actions = %d, want 2", len(res.Actions))
	}
	eq := res.Actions[1]
	if eq.Applicability != MaybeIncorrect || eq.Rule != "noDoubleEquals" {
		t.Fatalf("second action = %+v", eq)
	}
	out, err := eq.Mutation.Commit()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "a === b") {
		t.Errorf("fixed text = %q", out)
	}
	var diff *diag.Advice
	for i, a := range res.Diagnostics[1].Advices {
		if a.Kind == diag.AdviceDiff {
			diff = &res.Diagnostics[1].Advices[i]
		}
	}
	if diff == nil || diff.Before != "if (a == b) {}" || diff.After != "if (a === b) {}" {
		t.Errorf("diff advice = %+v", diff)
	}
}

func TestAnalyzeFixKindOverride(t *testing.T) {
	reg := testRegistry()
	cfg := `{"linter":{"rules":{"suspicious":{
		"noDebugger":{"level":"error","fix":"none"},
		"noDoubleEquals":{"level":"error","fix":"safe"}
	}}}}`
	res := runAnalyze(t, reg, analyzeCase{text: declared + "debugger;\nif (a == b) {}\n", config: cfg})
	if len(res.Actions) != 1 || res.Actions[0].Rule != "noDoubleEquals" || res.Actions[0].Applicability != Always {
		t.Fatalf("actions = %+v", res.Actions)
	}
	if res.Diagnostics[0].Tags.Has(diag.TagFixable) {
		t.Errorf("fix none must not tag the diagnostic fixable")
	}
}

func TestRulePanicBecomesDiagnostic(t *testing.T) {
	reg := testRegistry()
	res := runAnalyze(t, reg, analyzeCase{
		text:   "debugger;\n",
		config: `{"linter":{"rules":{"nursery":{"noPanic":"error"}}}}`,
	})
	var internal *diag.Diagnostic
	for i := range res.Diagnostics {
		if res.Diagnostics[i].Category == diag.CatRuleError {
			internal = &res.Diagnostics[i]
		}
	}
	if internal == nil {
		t.Fatalf("no internal diagnostic in %v", categories(res.Diagnostics))
	}
	if internal.Rule != "nursery/noPanic" || !internal.Tags.Has(diag.TagInternal) || !strings.Contains(internal.Message, "boom") {
		t.Errorf("internal diagnostic = %+v", internal)
	}
	// the other rules still ran
	if countCategory(res.Diagnostics, "lint/suspicious/noDebugger") != 1 {
		t.Errorf("noDebugger missing: %v", categories(res.Diagnostics))
	}
	if res.Diagnostics[len(res.Diagnostics)-1].Category != diag.CatRuleError {
		t.Errorf("internal diagnostics come last: %v", categories(res.Diagnostics))
	}
}

func TestAnalyzeCancelled(t *testing.T) {
	reg := testRegistry()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := runAnalyzeCtx(ctx, t, reg, analyzeCase{text: "debugger;\n// biome-ignore lint: unused\nlet x;\n"})
	if !res.Aborted {
		t.Fatal("expected Aborted")
	}
	if len(res.Diagnostics) != 0 {
		t.Fatalf("aborted run reported %v", categories(res.Diagnostics))
	}
}

func TestAnalyzeLimit(t *testing.T) {
	reg := testRegistry()
	res := runAnalyze(t, reg, analyzeCase{
		text:  "debugger;\ndebugger;\ndebugger;\n",
		input: func(in *Input) { in.Limit = 2 },
	})
	if !res.LimitReached {
		t.Fatal("expected LimitReached")
	}
	want := []string{"lint/suspicious/noDebugger", "lint/suspicious/noDebugger", string(diag.CatLimitReached)}
	if got := categories(res.Diagnostics); !slices.Equal(got, want) {
		t.Fatalf("categories = %v", got)
	}
	if res.Diagnostics[2].Message != limitMessage {
		t.Errorf("limit message = %q", res.Diagnostics[2].Message)
	}
	if len(res.Actions) != 2 {
		t.Errorf("actions = %d, want 2", len(res.Actions))
	}
}

func TestAnalyzeGlobals(t *testing.T) {
	reg := testRegistry()
	res := runAnalyze(t, reg, analyzeCase{
		text:   "describe('x', () => {});\njQuery();\nfoo();\n",
		config: `{"javascript":{"globals":["jQuery"]}}`,
		env:    Environment{Domains: Domains(DomainTest)},
	})
	var names []string
	for _, d := range res.Diagnostics {
		if d.Rule == "correctness/noUndeclaredVariables" {
			names = append(names, d.Message)
		}
	}
	if len(names) != 1 || !strings.Contains(names[0], "foo") {
		t.Fatalf("undeclared = %v", names)
	}
}

func TestAnalyzeOptions(t *testing.T) {
	reg := testRegistry()
	text := "let ab = 1, abcd = 2;\n"
	res := runAnalyze(t, reg, analyzeCase{
		text:   text,
		config: `{"linter":{"rules":{"style":{"noShortNames":{"level":"warn","options":{"minLength":3}}}}}}`,
	})
	if n := countCategory(res.Diagnostics, "lint/style/noShortNames"); n != 1 {
		t.Fatalf("noShortNames diagnostics = %d in %v", n, categories(res.Diagnostics))
	}
	if res.Diagnostics[0].Severity != diag.SevWarning {
		t.Errorf("severity = %v", res.Diagnostics[0].Severity)
	}
}

func TestAnalyzeFilter(t *testing.T) {
	reg := testRegistry()
	only := mustIndex(t, reg, "suspicious/noDoubleEquals")
	res := runAnalyze(t, reg, analyzeCase{
		text:  declared + "debugger;\nif (a == b) {}\n",
		input: func(in *Input) { in.Filter = func(i int) bool { return i == only } },
	})
	if got := categories(res.Diagnostics); !slices.Equal(got, []string{"lint/suspicious/noDoubleEquals"}) {
		t.Fatalf("categories = %v", got)
	}
}

func TestAnalyzeCSS(t *testing.T) {
	reg := testRegistry()
	res := runAnalyze(t, reg, analyzeCase{lang: syntax.LangCSS, text: "a { color: red !important; }\n"})
	if got := categories(res.Diagnostics); !slices.Equal(got, []string{"lint/complexity/noImportant"}) {
		t.Fatalf("categories = %v", got)
	}
}

func TestSuppressionAction(t *testing.T) {
	reg := testRegistry()
	text := "function f() {\n  debugger;\n}\n"
	res := runAnalyze(t, reg, analyzeCase{
		text: text,
		input: func(in *Input) {
			in.Suppressions = true
			in.SuppressionReason = "legacy"
		},
	})
	var supp *Action
	for i := range res.Actions {
		if res.Actions[i].IsSuppression() {
			supp = &res.Actions[i]
		}
	}
	if supp == nil {
		t.Fatalf("no suppression action in %+v", res.Actions)
	}
	if supp.Applicability != MaybeIncorrect {
		t.Errorf("suppression applicability = %v", supp.Applicability)
	}
	out, err := supp.Mutation.Commit()
	if err != nil {
		t.Fatal(err)
	}
	want := "function f() {\n  // biome-ignore lint/suspicious/noDebugger: legacy\n  debugger;\n}\n"
	if out != want {
		t.Fatalf("suppressed text:\n%s\nwant:\n%s", out, want)
	}
}

func TestDeprecatedRuleTag(t *testing.T) {
	dep := *testNoDebugger
	dep.Meta.Deprecated = "Use noDebuggerStatements."
	reg := NewRegistry(&dep)
	res := runAnalyze(t, reg, analyzeCase{text: "debugger;\n"})
	if len(res.Diagnostics) != 1 || !res.Diagnostics[0].Tags.Has(diag.TagDeprecated) {
		t.Fatalf("diagnostics = %+v", res.Diagnostics)
	}
}

func TestAnalyzeMergesPhasesInTreeOrder(t *testing.T) {
	reg := testRegistry()
	// noUndeclaredVariables runs in the semantic phase, noDebugger in the syntax one
	res := runAnalyze(t, reg, analyzeCase{text: "c();\ndebugger;\n"})

	want := []string{"lint/correctness/noUndeclaredVariables", "lint/suspicious/noDebugger"}
	if got := categories(res.Diagnostics); !slices.Equal(got, want) {
		t.Fatalf("categories:\n got %v\nwant %v", got, want)
	}
	if res.Diagnostics[0].Primary.Start > res.Diagnostics[1].Primary.Start {
		t.Fatalf("diagnostics out of source order: %v, %v", res.Diagnostics[0].Primary, res.Diagnostics[1].Primary)
	}
	if len(res.Actions) != 1 {
		t.Fatalf("actions = %d, want 1", len(res.Actions))
	}
	if act := res.Actions[0]; act.Diagnostic != 1 || act.Rule != "noDebugger" {
		t.Errorf("action = %+v, want it attached to diagnostic 1", act)
	}
}
