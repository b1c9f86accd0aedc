package rules

import (
	"weblint/internal/analyzer"
	"weblint/internal/syntax"
)

var useConst = &analyzer.TypedRule[*syntax.Token, analyzer.NoOptions]{
	Meta: analyzer.RuleMetadata{
		Version:  "1.0.0",
		Name:     "useConst",
		Group:    "style",
		Language: "js",
		Fix:      analyzer.FixSafe,
		Sources:  []analyzer.RuleSource{{Tool: "eslint", ID: "prefer-const"}},
		Docs:     "Require const declarations for variables that are only assigned once.",
	},
	On: analyzer.Semantic("lexical_declaration"),
	RunFunc: func(ctx *analyzer.RuleContext, _ *analyzer.NoOptions) (*syntax.Token, bool) {
		n := ctx.Node()
		kw, ok := slotElement(n, "kind").(*syntax.Token)
		if !ok || kw.Text() != "let" {
			return nil, false
		}
		return kw, singleAssignment(ctx.Semantic(), n)
	},
	DiagnosticFunc: func(ctx *analyzer.RuleContext, kw *syntax.Token) *analyzer.RuleDiagnostic {
		d := analyzer.NewRuleDiagnostic(kw.Range(), "This let declares a variable that is only assigned once.")
		model := ctx.Semantic()
		for _, decl := range ctx.Node().ChildNodes() {
			if decl.Kind() != "variable_declarator" {
				continue
			}
			if name, ok := decl.Slot("name"); ok {
				for tok := range declaredTokens(model, name) {
					d.WithNote(tok.Range(), "'"+tok.Text()+"' is never reassigned.")
				}
			}
		}
		return d
	},
	ActionFunc: func(ctx *analyzer.RuleContext, kw *syntax.Token, _ *analyzer.NoOptions) *analyzer.RuleAction {
		m := ctx.NewMutation()
		m.Replace(kw, "const")
		return analyzer.NewRuleAction("Use const instead.", m)
	},
}
