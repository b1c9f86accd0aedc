package rules

import (
	"weblint/internal/analyzer"
	"weblint/internal/syntax"
)

var noDebugger = &analyzer.TypedRule[*syntax.Node, analyzer.NoOptions]{
	Meta: analyzer.RuleMetadata{
		Version:     "1.0.0",
		Name:        "noDebugger",
		Group:       "suspicious",
		Language:    "js",
		Recommended: true,
		Fix:         analyzer.FixUnsafe,
		Sources:     []analyzer.RuleSource{{Tool: "eslint", ID: "no-debugger"}},
		Docs:        "Disallow the use of debugger.",
	},
	On: analyzer.Ast("debugger_statement"),
	RunFunc: func(ctx *analyzer.RuleContext, _ *analyzer.NoOptions) (*syntax.Node, bool) {
		return ctx.Node(), true
	},
	DiagnosticFunc: func(_ *analyzer.RuleContext, n *syntax.Node) *analyzer.RuleDiagnostic {
		return analyzer.NewRuleDiagnostic(n.Range(), "This is an unexpected use of the debugger statement.")
	},
	ActionFunc: func(ctx *analyzer.RuleContext, n *syntax.Node, _ *analyzer.NoOptions) *analyzer.RuleAction {
		m := ctx.NewMutation()
		// в позиции тела if/while оператор нельзя просто удалить
		if p := n.Parent(); p != nil && p.Kind() != "program" && p.Kind() != "statement_block" &&
			p.Kind() != "switch_case" && p.Kind() != "switch_default" {
			m.Replace(n, ";")
		} else {
			m.Remove(n)
		}
		return analyzer.NewRuleAction("Remove debugger statement", m)
	},
}
