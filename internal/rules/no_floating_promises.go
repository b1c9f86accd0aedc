package rules

import (
	"weblint/internal/analyzer"
	"weblint/internal/syntax"
)

var noFloatingPromises = &analyzer.TypedRule[syntax.Element, analyzer.NoOptions]{
	Meta: analyzer.RuleMetadata{
		Version:     "2.0.0",
		Name:        "noFloatingPromises",
		Group:       "nursery",
		Language:    "ts",
		Recommended: true,
		Fix:         analyzer.FixUnsafe,
		Sources: []analyzer.RuleSource{
			{Tool: "typescript-eslint", ID: "no-floating-promises"},
		},
		Docs: "Require promise-like statements to be handled appropriately.",
	},
	On: analyzer.Semantic("expression_statement"),
	RunFunc: func(ctx *analyzer.RuleContext, _ *analyzer.NoOptions) (syntax.Element, bool) {
		exprs := ctx.Node().ChildNodes()
		if len(exprs) == 0 {
			return nil, false
		}
		expr := unparen(exprs[0])
		n, ok := expr.(*syntax.Node)
		if !ok {
			return nil, false
		}
		switch n.Kind() {
		case "await_expression", "assignment_expression", "augmented_assignment_expression":
			return nil, false
		case "call_expression":
			if handlesRejection(n) {
				return nil, false
			}
		}
		resolver := ctx.Types()
		if resolver == nil || !resolver.IsPromise(resolver.TypeOf(n)) {
			return nil, false
		}
		return n, true
	},
	DiagnosticFunc: func(_ *analyzer.RuleContext, expr syntax.Element) *analyzer.RuleDiagnostic {
		return analyzer.NewRuleDiagnostic(expr.Range(), "A \"floating\" Promise was found, meaning it is not properly handled and could lead to ignored errors or unexpected behavior.").
			WithLog("This happens when a Promise is not awaited, lacks a .catch or .then rejection handler, or is not explicitly ignored using the void operator.")
	},
	ActionFunc: func(ctx *analyzer.RuleContext, expr syntax.Element, _ *analyzer.NoOptions) *analyzer.RuleAction {
		if !isAsync(enclosingFunction(ctx.Node())) {
			return nil
		}
		m := ctx.NewMutation()
		m.InsertBefore(expr, "await ")
		return analyzer.NewRuleAction("Add await operator.", m)
	},
}

// handlesRejection reports p.catch(...) and p.then(ok, fail).
func handlesRejection(call *syntax.Node) bool {
	fn := call.SlotNode("function")
	if fn == nil || fn.Kind() != "member_expression" {
		return false
	}
	n := len(callArguments(call))
	switch fn.SlotText("property") {
	case "catch":
		return n >= 1
	case "then":
		return n >= 2
	}
	return false
}
