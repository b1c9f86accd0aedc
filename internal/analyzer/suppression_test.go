package analyzer

import (
	"slices"
	"strings"
	"testing"

	"weblint/internal/diag"
	"weblint/internal/syntax"
)

func TestSuppressions(t *testing.T) {
	reg := testRegistry()
	const dbg = "lint/suspicious/noDebugger"
	cases := []struct {
		name string
		lang syntax.Language
		text string
		want []string
	}{
		{
			name: "next statement",
			text: "// biome-ignore lint/suspicious/noDebugger: needed\ndebugger;\ndebugger;\n",
			want: []string{dbg},
		},
		{
			name: "group prefix",
			text: "// biome-ignore lint/suspicious: needed\ndebugger;\n",
			want: nil,
		},
		{
			name: "root prefix",
			text: "/* biome-ignore lint: needed */\ndebugger;\n",
			want: nil,
		},
		{
			name: "prefix is segment wise",
			text: "// biome-ignore lint/suspicious/noDebug: x\ndebugger;\n",
			want: []string{dbg, string(diag.CatSuppressionUnknownRule)},
		},
		{
			name: "trailing comment covers the next statement",
			text: "debugger; // biome-ignore lint/suspicious/noDebugger: x\ndebugger;\n",
			want: []string{dbg},
		},
		{
			name: "value argument",
			text: "// biome-ignore lint/suspicious/noDebugger(foo): x\ndebugger;\n",
			want: nil,
		},
		{
			name: "missing reason",
			text: "// biome-ignore lint/suspicious/noDebugger\ndebugger;\n",
			want: []string{dbg, string(diag.CatSuppressionIncorrect)},
		},
		{
			name: "whole file",
			text: "// biome-ignore-all lint/suspicious/noDebugger: generated\ndebugger;\nfunction f() { debugger; }\n",
			want: nil,
		},
		{
			name: "whole file must be on top",
			text: "debugger;\n// biome-ignore-all lint/suspicious/noDebugger: generated\ndebugger;\n",
			want: []string{dbg, dbg, string(diag.CatSuppressionIncorrect)},
		},
		{
			name: "range",
			text: "debugger;\n// biome-ignore-start lint/suspicious/noDebugger: block\ndebugger;\ndebugger;\n// biome-ignore-end lint/suspicious/noDebugger\ndebugger;\n",
			want: []string{dbg, dbg},
		},
		{
			name: "unmatched end",
			text: "// biome-ignore-end lint/suspicious/noDebugger\nlet x = 1;\n",
			want: []string{string(diag.CatSuppressionIncorrect)},
		},
		{
			name: "unused",
			text: "// biome-ignore lint/style/noShortNames: x\nlet value = 1;\n",
			want: []string{string(diag.CatSuppressionUnused)},
		},
		{
			name: "unknown group",
			text: "// biome-ignore lint/suspicous: x\ndebugger;\n",
			want: []string{dbg, string(diag.CatSuppressionUnknownGrp)},
		},
		{
			name: "not a pragma",
			text: "// biome-ignored lint: x\ndebugger;\n",
			want: []string{dbg},
		},
		{
			name: "css block comment",
			lang: syntax.LangCSS,
			text: "a {\n  /* biome-ignore lint/complexity/noImportant: vendor */\n  color: red !important;\n}\n",
			want: nil,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res := runAnalyze(t, reg, analyzeCase{lang: c.lang, text: c.text})
			if got := categories(res.Diagnostics); !slices.Equal(got, c.want) {
				t.Fatalf("categories:\n got %v\nwant %v", got, c.want)
			}
		})
	}
}

func TestSuppressedDiagnosticDropsAction(t *testing.T) {
	reg := testRegistry()
	res := runAnalyze(t, reg, analyzeCase{
		text:  "let a = 1, b = 2;\n// biome-ignore lint/suspicious/noDoubleEquals: legacy\nif (a == b) {}\n",
		input: func(in *Input) { in.Unsafe = true },
	})
	if len(res.Diagnostics) != 0 || len(res.Actions) != 0 {
		t.Fatalf("diagnostics %v, actions %d", categories(res.Diagnostics), len(res.Actions))
	}
}

func TestUnusedSuppressionIsTagged(t *testing.T) {
	reg := testRegistry()
	res := runAnalyze(t, reg, analyzeCase{text: "// biome-ignore lint: nothing here\nlet value = 1;\n"})
	if len(res.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %v", categories(res.Diagnostics))
	}
	d := res.Diagnostics[0]
	if d.Severity != diag.SevWarning || !d.Tags.Has(diag.TagUnnecessary) || d.Message != msgUnused {
		t.Fatalf("unused suppression = %+v", d)
	}
}

func TestUnknownRuleSuggestion(t *testing.T) {
	reg := testRegistry()
	res := runAnalyze(t, reg, analyzeCase{text: "// biome-ignore lint/suspicious/noDebuger: x\nlet value = 1;\n"})
	if len(res.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %v", categories(res.Diagnostics))
	}
	var hint string
	for _, a := range res.Diagnostics[0].Advices {
		hint += a.Text
	}
	if !strings.Contains(hint, "suspicious/noDebugger") {
		t.Fatalf("advices = %+v", res.Diagnostics[0].Advices)
	}
}

func TestSuppressionComment(t *testing.T) {
	cat := diag.LintCategory("style", "noVar")
	cases := map[syntax.Language]string{
		syntax.LangTypeScript: "// biome-ignore lint/style/noVar: why",
		syntax.LangCSS:        "/* biome-ignore lint/style/noVar: why */",
		syntax.LangHTML:       "<!-- biome-ignore lint/style/noVar: why -->",
	}
	for lang, want := range cases {
		if got := suppressionComment(lang, cat, "why"); got != want {
			t.Errorf("%s: %q, want %q", lang, got, want)
		}
	}
}
