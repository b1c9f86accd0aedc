package rules

import (
	"strings"

	"weblint/internal/analyzer"
	"weblint/internal/diag"
	"weblint/internal/semantic"
	"weblint/internal/syntax"
)

type unusedImports struct {
	Import *semantic.Import
	Unused []int
	// Empty is set for `import {} from "x"`.
	Empty bool
}

var noUnusedImports = &analyzer.TypedRule[unusedImports, analyzer.NoOptions]{
	Meta: analyzer.RuleMetadata{
		Version:     "1.3.0",
		Name:        "noUnusedImports",
		Group:       "correctness",
		Language:    "js",
		Recommended: true,
		Severity:    analyzer.Sev(diag.SevWarning),
		Fix:         analyzer.FixUnsafe,
		Sources: []analyzer.RuleSource{
			{Tool: "eslint-plugin-unused-imports", ID: "no-unused-imports"},
		},
		Docs: "Disallow unused imports.",
	},
	On: analyzer.Semantic("import_statement"),
	RunFunc: func(ctx *analyzer.RuleContext, _ *analyzer.NoOptions) (unusedImports, bool) {
		model := ctx.Semantic()
		var imp *semantic.Import
		for i, candidate := range model.Imports() {
			if candidate.Node == ctx.Node() {
				imp = &model.Imports()[i]
				break
			}
		}
		if imp == nil {
			return unusedImports{}, false
		}
		if len(imp.Names) == 0 {
			clause := ctx.Node().FirstChildOfKind("import_clause")
			return unusedImports{Import: imp, Empty: true}, clause != nil
		}
		s := unusedImports{Import: imp}
		for i, name := range imp.Names {
			if len(model.References(name.Binding)) == 0 {
				s.Unused = append(s.Unused, i)
			}
		}
		return s, len(s.Unused) > 0
	},
	DiagnosticFunc: func(_ *analyzer.RuleContext, s unusedImports) *analyzer.RuleDiagnostic {
		var msg string
		switch {
		case s.Empty:
			msg = "This import is empty."
		case len(s.Unused) < len(s.Import.Names):
			msg = "Several of these imports are unused."
		case len(s.Unused) > 1:
			msg = "These imports are unused."
		default:
			msg = "This import is unused."
		}
		d := analyzer.NewRuleDiagnostic(s.Import.Range, msg).WithTags(diag.TagUnnecessary)
		if len(s.Unused) < len(s.Import.Names) {
			for _, i := range s.Unused {
				name := s.Import.Names[i]
				d.WithNote(name.Token.Range(), name.Local+" is unused.")
			}
		}
		return d.WithLog("Unused imports might be the result of an incomplete refactoring.")
	},
	ActionFunc: func(ctx *analyzer.RuleContext, s unusedImports, _ *analyzer.NoOptions) *analyzer.RuleAction {
		m := ctx.NewMutation()
		clause := s.Import.Node.FirstChildOfKind("import_clause")
		if s.Empty || len(s.Unused) == len(s.Import.Names) || clause == nil {
			m.Remove(s.Import.Node)
			return analyzer.NewRuleAction("Remove the unused imports.", m)
		}
		m.Replace(clause, renderClause(clause, s))
		return analyzer.NewRuleAction("Remove the unused imports.", m)
	},
}

// renderClause rebuilds an import clause without the unused names.
func renderClause(clause *syntax.Node, s unusedImports) string {
	unused := make(map[int]bool, len(s.Unused))
	for _, i := range s.Unused {
		unused[i] = true
	}
	var parts, named []string
	for i, name := range s.Import.Names {
		if unused[i] {
			continue
		}
		switch name.Imported {
		case "default":
			parts = append(parts, name.Token.Text())
		case "*":
			parts = append(parts, name.Node.Text())
		default:
			named = append(named, name.Node.Text())
		}
	}
	if len(named) > 0 {
		lbrace, rbrace := "{ ", " }"
		if ni := clause.FirstChildOfKind("named_imports"); ni != nil && !strings.HasPrefix(ni.Text(), "{ ") {
			lbrace, rbrace = "{", "}"
		}
		parts = append(parts, lbrace+strings.Join(named, ", ")+rbrace)
	}
	return strings.Join(parts, ", ")
}
