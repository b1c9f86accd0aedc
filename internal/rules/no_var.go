package rules

import (
	"iter"

	"weblint/internal/analyzer"
	"weblint/internal/semantic"
	"weblint/internal/syntax"
)

var noVar = &analyzer.TypedRule[*syntax.Token, analyzer.NoOptions]{
	Meta: analyzer.RuleMetadata{
		Version:     "1.0.0",
		Name:        "noVar",
		Group:       "suspicious",
		Language:    "js",
		Recommended: true,
		Fix:         analyzer.FixUnsafe,
		Sources:     []analyzer.RuleSource{{Tool: "eslint", ID: "no-var"}},
		Docs:        "Disallow the use of var.",
	},
	On: analyzer.Semantic("variable_declaration"),
	RunFunc: func(ctx *analyzer.RuleContext, _ *analyzer.NoOptions) (*syntax.Token, bool) {
		// declare global { var x: T } is the only way to extend globalThis
		if syntax.AncestorOfKind(ctx.Node(), "ambient_declaration") != nil {
			return nil, false
		}
		kw := ctx.Node().ChildToken("var")
		return kw, kw != nil
	},
	DiagnosticFunc: func(ctx *analyzer.RuleContext, kw *syntax.Token) *analyzer.RuleDiagnostic {
		return analyzer.NewRuleDiagnostic(ctx.Node().Range(), "Use let or const instead of var.").
			WithLog("A variable declared with var is accessible in the whole body of the function. Thus, the variable can be accessed before its initialization and outside the block where it is declared.")
	},
	ActionFunc: func(ctx *analyzer.RuleContext, kw *syntax.Token, _ *analyzer.NoOptions) *analyzer.RuleAction {
		replacement := "let"
		if singleAssignment(ctx.Semantic(), ctx.Node()) {
			replacement = "const"
		}
		m := ctx.NewMutation()
		m.Replace(kw, replacement)
		return analyzer.NewRuleAction("Use '"+replacement+"'.", m)
	},
}

// singleAssignment reports whether every declarator of decl has an
// initializer and none of its bindings is written afterwards.
func singleAssignment(model *semantic.Model, decl *syntax.Node) bool {
	if model == nil {
		return false
	}
	declarators := 0
	for _, d := range decl.ChildNodes() {
		if d.Kind() != "variable_declarator" {
			continue
		}
		declarators++
		if _, ok := d.Slot("value"); !ok {
			return false
		}
		name, ok := d.Slot("name")
		if !ok {
			return false
		}
		for tok := range declaredTokens(model, name) {
			b, ok := model.BindingOf(tok)
			if !ok || len(model.Writes(b.ID)) > 0 {
				return false
			}
		}
	}
	return declarators > 0
}

// declaredTokens yields the identifiers el declares, skipping keys and
// default values of destructuring patterns.
func declaredTokens(model *semantic.Model, el syntax.Element) iter.Seq[*syntax.Token] {
	return func(yield func(*syntax.Token) bool) {
		var toks iter.Seq[*syntax.Token]
		switch e := el.(type) {
		case *syntax.Token:
			toks = func(y func(*syntax.Token) bool) { y(e) }
		case *syntax.Node:
			toks = e.Tokens()
		default:
			return
		}
		for tok := range toks {
			if b, ok := model.BindingOf(tok); ok && b.Token == tok {
				if !yield(tok) {
					return
				}
			}
		}
	}
}
