package rules

import (
	"slices"
	"strings"

	"weblint/internal/analyzer"
	"weblint/internal/syntax"
)

// importRun is a chunk of adjacent import statements that can be reordered
// freely. Blank lines, other statements and side-effect imports end a run.
type importRun struct {
	Nodes  []*syntax.Node
	Sorted []*syntax.Node
}

var organizeImports = &analyzer.TypedRule[[]importRun, analyzer.NoOptions]{
	Meta: analyzer.RuleMetadata{
		Version:     "1.0.0",
		Name:        "organizeImports",
		Group:       "source",
		Category:    analyzer.CategoryAssist,
		Language:    "js",
		Recommended: true,
		Fix:         analyzer.FixSafe,
		Docs:        "Provides a code action to sort the imports and exports in the file.",
	},
	On: analyzer.Ast("program"),
	RunFunc: func(ctx *analyzer.RuleContext, _ *analyzer.NoOptions) ([]importRun, bool) {
		var out []importRun
		for _, run := range importRuns(ctx.Node()) {
			sorted := slices.Clone(run)
			slices.SortStableFunc(sorted, compareImports)
			changed := false
			for i := range run {
				if run[i] != sorted[i] || renderImport(sorted[i]) != run[i].Text() {
					changed = true
					break
				}
			}
			if changed {
				out = append(out, importRun{Nodes: run, Sorted: sorted})
			}
		}
		return out, len(out) > 0
	},
	DiagnosticFunc: func(_ *analyzer.RuleContext, runs []importRun) *analyzer.RuleDiagnostic {
		first := runs[0].Nodes
		r := first[0].Range()
		r.End = first[len(first)-1].Range().End
		return analyzer.NewRuleDiagnostic(r, "The imports and exports are not sorted.")
	},
	ActionFunc: func(ctx *analyzer.RuleContext, runs []importRun, _ *analyzer.NoOptions) *analyzer.RuleAction {
		m := ctx.NewMutation()
		for _, run := range runs {
			for i, n := range run.Nodes {
				if text := renderImport(run.Sorted[i]); text != n.Text() {
					m.Replace(n, text)
				}
			}
		}
		a := analyzer.NewRuleAction("Organize Imports (Biome)", m)
		a.Kind = analyzer.ActionSource
		return a
	},
}

func importRuns(program *syntax.Node) [][]*syntax.Node {
	var runs [][]*syntax.Node
	var cur []*syntax.Node
	flush := func() {
		if len(cur) > 0 {
			runs = append(runs, cur)
		}
		cur = nil
	}
	for _, c := range program.Children() {
		n, ok := c.(*syntax.Node)
		if !ok || n.Kind() != "import_statement" || n.FirstChildOfKind("import_clause") == nil {
			flush()
			continue
		}
		if len(cur) > 0 && blankLineBefore(n.FirstToken()) {
			flush()
		}
		cur = append(cur, n)
	}
	flush()
	return runs
}

func importSource(n *syntax.Node) string {
	s, _ := stringValue(slotElement(n, "source"))
	return s
}

// importRank orders sources from the most to the least distant.
func importRank(src string) int {
	switch {
	case strings.HasPrefix(src, "bun:"):
		return 0
	case strings.HasPrefix(src, "node:"):
		return 1
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return 2
	case strings.HasPrefix(src, "#"), strings.HasPrefix(src, "@/"), strings.HasPrefix(src, "~"):
		return 4
	case strings.HasPrefix(src, "/"):
		return 5
	case strings.HasPrefix(src, "../"), src == "..":
		return 6
	case strings.HasPrefix(src, "./"), src == ".":
		return 7
	}
	return 3
}

func compareImports(a, b *syntax.Node) int {
	sa, sb := importSource(a), importSource(b)
	if ra, rb := importRank(sa), importRank(sb); ra != rb {
		return ra - rb
	}
	return compareNames(sa, sb)
}

// compareNames is case-insensitive with a case-sensitive tie break.
func compareNames(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// renderImport returns the statement text with its named specifiers sorted.
func renderImport(n *syntax.Node) string {
	clause := n.FirstChildOfKind("import_clause")
	if clause == nil {
		return n.Text()
	}
	named := clause.FirstChildOfKind("named_imports")
	if named == nil {
		return n.Text()
	}
	specs := named.ChildNodes()
	if len(specs) < 2 || named.HasError() {
		return n.Text()
	}
	sorted := slices.Clone(specs)
	slices.SortStableFunc(sorted, func(a, b *syntax.Node) int {
		return compareNames(a.SlotText("name"), b.SlotText("name"))
	})
	if slices.Equal(sorted, specs) {
		return n.Text()
	}
	// specifiers are swapped in place so separators and comments stay put
	text := n.Text()
	base := n.Range().Start
	var b strings.Builder
	cursor := uint32(0)
	for i, spec := range specs {
		r := spec.Range()
		b.WriteString(text[cursor : r.Start-base])
		b.WriteString(sorted[i].Text())
		cursor = r.End - base
	}
	b.WriteString(text[cursor:])
	return b.String()
}
