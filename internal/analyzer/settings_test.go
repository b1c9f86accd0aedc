package analyzer

import (
	"slices"
	"testing"

	"weblint/internal/diag"
	"weblint/internal/syntax"
)

func enabledKeys(s *Settings) []string {
	var out []string
	for _, i := range s.Enabled.Slice() {
		out = append(out, s.Registry.Metadata(i).Key())
	}
	return out
}

func resolve(t *testing.T, reg *Registry, cfg string, lang syntax.Language, env Environment) *Settings {
	t.Helper()
	return ResolveSettings(reg, parseConfig(t, reg, cfg), lang, env)
}

func TestResolveSettings(t *testing.T) {
	reg := testRegistry()
	cases := []struct {
		name   string
		config string
		lang   syntax.Language
		env    Environment
		want   []string
	}{
		{
			name: "defaults",
			lang: syntax.LangJavaScript,
			want: []string{"correctness/noUndeclaredVariables", "suspicious/noDebugger", "suspicious/noDoubleEquals", "source/useSortedKeys"},
		},
		{
			name: "css only sees css rules",
			lang: syntax.LangCSS,
			want: []string{"complexity/noImportant"},
		},
		{
			name:   "recommended off keeps explicit rules",
			config: `{"linter":{"rules":{"recommended":false,"style":{"noShortNames":"warn"}}}}`,
			lang:   syntax.LangJavaScript,
			want:   []string{"style/noShortNames", "source/useSortedKeys"},
		},
		{
			name:   "group recommended false",
			config: `{"linter":{"rules":{"suspicious":{"recommended":false}}}}`,
			lang:   syntax.LangJavaScript,
			want:   []string{"correctness/noUndeclaredVariables", "source/useSortedKeys"},
		},
		{
			name:   "all skips nursery",
			config: `{"linter":{"rules":{"recommended":false,"all":true}}}`,
			lang:   syntax.LangJavaScript,
			want: []string{
				"correctness/noUndeclaredVariables", "style/noShortNames",
				"suspicious/noDebugger", "suspicious/noDoubleEquals", "source/useSortedKeys",
			},
		},
		{
			name:   "nursery all",
			config: `{"linter":{"rules":{"recommended":false,"nursery":{"all":true}}}}`,
			lang:   syntax.LangJavaScript,
			want:   []string{"nursery/noPanic", "source/useSortedKeys"},
		},
		{
			name: "unstable runs recommended nursery",
			lang: syntax.LangTypeScript,
			env:  Environment{Unstable: true},
			want: []string{"correctness/noUndeclaredVariables", "nursery/noFloating", "suspicious/noDebugger", "suspicious/noDoubleEquals", "source/useSortedKeys"},
		},
		{
			name:   "explicit off",
			config: `{"linter":{"rules":{"suspicious":{"noDebugger":"off"}}}}`,
			lang:   syntax.LangJavaScript,
			want:   []string{"correctness/noUndeclaredVariables", "suspicious/noDoubleEquals", "source/useSortedKeys"},
		},
		{
			name: "detected test domain",
			lang: syntax.LangJavaScript,
			env:  Environment{Domains: Domains(DomainTest)},
			want: []string{"correctness/noUndeclaredVariables", "suspicious/noDebugger", "suspicious/noDoubleEquals", "suspicious/noFocusedTests", "source/useSortedKeys"},
		},
		{
			name:   "configured domain none beats detection",
			config: `{"linter":{"domains":{"test":"none"}}}`,
			lang:   syntax.LangJavaScript,
			env:    Environment{Domains: Domains(DomainTest)},
			want:   []string{"correctness/noUndeclaredVariables", "suspicious/noDebugger", "suspicious/noDoubleEquals", "source/useSortedKeys"},
		},
		{
			name:   "explicit rule bypasses domain gating",
			config: `{"linter":{"rules":{"recommended":false,"suspicious":{"noFocusedTests":"error"}}}}`,
			lang:   syntax.LangJavaScript,
			want:   []string{"suspicious/noFocusedTests", "source/useSortedKeys"},
		},
		{
			name:   "linter disabled",
			config: `{"linter":{"enabled":false}}`,
			lang:   syntax.LangJavaScript,
			want:   []string{"source/useSortedKeys"},
		},
		{
			name:   "typescript falls back to javascript linter",
			config: `{"javascript":{"linter":{"enabled":false}},"assist":{"enabled":false}}`,
			lang:   syntax.LangTSX,
			want:   nil,
		},
		{
			name:   "typescript linter wins",
			config: `{"javascript":{"linter":{"enabled":false}},"typescript":{"linter":{"enabled":true}},"assist":{"enabled":false}}`,
			lang:   syntax.LangTypeScript,
			want:   []string{"correctness/noUndeclaredVariables", "suspicious/noDebugger", "suspicious/noDoubleEquals"},
		},
		{
			name: "only replaces",
			lang: syntax.LangJavaScript,
			env:  Environment{Only: []RuleSelector{{Category: CategoryLint, Group: "style"}}},
			want: []string{"style/noShortNames"},
		},
		{
			name: "skip subtracts",
			lang: syntax.LangJavaScript,
			env:  Environment{Skip: []RuleSelector{{Category: CategoryLint, Group: "suspicious"}}},
			want: []string{"correctness/noUndeclaredVariables", "source/useSortedKeys"},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := resolve(t, reg, c.config, c.lang, c.env)
			if got := enabledKeys(s); !slices.Equal(got, c.want) {
				t.Fatalf("enabled:\n got %v\nwant %v", got, c.want)
			}
		})
	}
}

// Turning a rule on never disables another one.
func TestExplicitOnIsMonotonic(t *testing.T) {
	reg := testRegistry()
	base := resolve(t, reg, "", syntax.LangJavaScript, Environment{})
	for i := range reg.Len() {
		m := reg.Metadata(i)
		if m.Category != CategoryLint || !m.Languages().Has(syntax.LangJavaScript) {
			continue
		}
		cfg := `{"linter":{"rules":{"` + m.Group + `":{"` + m.Name + `":"on"}}}}`
		s := resolve(t, reg, cfg, syntax.LangJavaScript, Environment{})
		if !s.IsEnabled(i) {
			t.Errorf("%s: not enabled after on", m.Key())
		}
		rest := base.Enabled.Clone()
		rest.SubtractWith(s.Enabled)
		if !rest.Empty() {
			t.Errorf("%s: enabling it dropped %v", m.Key(), rest.Slice())
		}
	}
}

func TestRuleSeverityAndOptions(t *testing.T) {
	reg := testRegistry()
	cfg := `{"linter":{"rules":{
		"suspicious":{"noDebugger":"warn","noDoubleEquals":{"level":"info","fix":"safe"}},
		"style":{"noShortNames":{"level":"on","options":{"minLength":4,"bogus":1}}}
	}}}`
	s := resolve(t, reg, cfg, syntax.LangJavaScript, Environment{})

	if sev := s.Rule(mustIndex(t, reg, "suspicious/noDebugger")).Severity; sev != diag.SevWarning {
		t.Errorf("noDebugger severity = %v", sev)
	}
	eq := s.Rule(mustIndex(t, reg, "suspicious/noDoubleEquals"))
	if eq.Severity != diag.SevInfo || eq.Fix == nil || *eq.Fix != FixSafe {
		t.Errorf("noDoubleEquals settings = %+v", eq)
	}
	short := s.Rule(mustIndex(t, reg, "style/noShortNames"))
	if short.Severity != diag.SevInfo {
		t.Errorf("on should resolve to the style default, got %v", short.Severity)
	}
	opts, ok := short.Options.(*shortNameOptions)
	if !ok || opts.MinLength != 4 {
		t.Fatalf("options = %#v", short.Options)
	}
	if n := countCategory(s.Diagnostics, diag.CatConfigUnknownKey); n != 1 {
		t.Errorf("unknown option diagnostics = %d, want 1", n)
	}
	if s.Rule(mustIndex(t, reg, "correctness/noUndeclaredVariables")).Severity != diag.SevError {
		t.Errorf("recommended correctness rules default to error")
	}
}

func TestDomainGlobals(t *testing.T) {
	reg := testRegistry()
	s := resolve(t, reg, `{"javascript":{"globals":["jQuery","it"]}}`, syntax.LangJavaScript, Environment{Domains: Domains(DomainTest)})
	if !slices.Contains(s.Globals, "jQuery") || !slices.Contains(s.Globals, "describe") {
		t.Fatalf("globals = %v", s.Globals)
	}
	if !slices.IsSorted(s.Globals) || len(slices.Compact(slices.Clone(s.Globals))) != len(s.Globals) {
		t.Fatalf("globals not sorted and unique: %v", s.Globals)
	}
	if !s.Domains.Has(DomainTest) {
		t.Fatal("test domain should be active")
	}
}

func TestDomainsFromDependencies(t *testing.T) {
	cases := []struct {
		deps map[string]string
		want DomainSet
	}{
		{map[string]string{"react": "^18.2.0"}, Domains(DomainReact)},
		{map[string]string{"react": "15.0.0"}, 0},
		{map[string]string{"next": "latest", "vitest": "^1"}, Domains(DomainNext, DomainTest)},
		{map[string]string{"next": "13.4.0"}, 0},
		{map[string]string{"solid-js": "1.8.0"}, Domains(DomainSolid)},
		{map[string]string{"lodash": "4"}, 0},
	}
	for _, c := range cases {
		if got := DomainsFromDependencies(c.deps); got != c.want {
			t.Errorf("%v: got %v want %v", c.deps, got.Names(), c.want.Names())
		}
	}
}
