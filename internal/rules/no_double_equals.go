package rules

import (
	"weblint/internal/analyzer"
	"weblint/internal/syntax"
)

type doubleEqualsOptions struct {
	// IgnoreNull allows `== null` and `!= null`, which also match undefined.
	IgnoreNull bool `json:"ignoreNull"`
}

var noDoubleEquals = &analyzer.TypedRule[*syntax.Token, doubleEqualsOptions]{
	Meta: analyzer.RuleMetadata{
		Version:     "1.0.0",
		Name:        "noDoubleEquals",
		Group:       "suspicious",
		Language:    "js",
		Recommended: true,
		Fix:         analyzer.FixUnsafe,
		Sources:     []analyzer.RuleSource{{Tool: "eslint", ID: "eqeqeq"}},
		Docs:        "Require the use of === and !==.",
	},
	On: analyzer.Ast("binary_expression"),
	RunFunc: func(ctx *analyzer.RuleContext, o *doubleEqualsOptions) (*syntax.Token, bool) {
		n := ctx.Node()
		op, ok := slotElement(n, "operator").(*syntax.Token)
		if !ok || (op.Kind() != "==" && op.Kind() != "!=") {
			return nil, false
		}
		if o.IgnoreNull && (isNull(slotElement(n, "left")) || isNull(slotElement(n, "right"))) {
			return nil, false
		}
		return op, true
	},
	DiagnosticFunc: func(_ *analyzer.RuleContext, op *syntax.Token) *analyzer.RuleDiagnostic {
		strict := strictOperator(op)
		return analyzer.NewRuleDiagnostic(op.Range(), "Use "+strict+" instead of "+op.Text()).
			WithLog(op.Text() + " is only allowed when comparing against null").
			WithNote(op.Range(), "Using "+strict+" may be unsafe if you are relying on type coercion")
	},
	ActionFunc: func(ctx *analyzer.RuleContext, op *syntax.Token, _ *doubleEqualsOptions) *analyzer.RuleAction {
		strict := strictOperator(op)
		m := ctx.NewMutation()
		m.Replace(op, strict)
		return analyzer.NewRuleAction("Use "+strict, m)
	},
	Defaults: func() *doubleEqualsOptions { return &doubleEqualsOptions{IgnoreNull: true} },
}

func strictOperator(op *syntax.Token) string {
	if op.Kind() == "!=" {
		return "!=="
	}
	return "==="
}

func isNull(el syntax.Element) bool {
	return isKind(unparen(el), "null")
}
