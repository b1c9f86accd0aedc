package rules

import (
	"weblint/internal/analyzer"
	"weblint/internal/syntax"
)

var testFunctions = map[string]bool{"describe": true, "it": true, "test": true, "suite": true, "context": true}

var focusedAliases = map[string]string{"fit": "it", "fdescribe": "describe", "ftest": "test"}

// focus is the part of a test call that focuses it: a `.only` member or an
// f-prefixed alias.
type focus struct {
	// Member is the member_expression `X.only`, nil for aliases.
	Member *syntax.Node
	Alias  *syntax.Token
}

var noFocusedTests = &analyzer.TypedRule[focus, analyzer.NoOptions]{
	Meta: analyzer.RuleMetadata{
		Version:     "1.6.0",
		Name:        "noFocusedTests",
		Group:       "suspicious",
		Language:    "js",
		Recommended: true,
		Fix:         analyzer.FixUnsafe,
		Domains:     analyzer.Domains(analyzer.DomainTest),
		Sources: []analyzer.RuleSource{
			{Tool: "eslint-plugin-jest", ID: "no-focused-tests", Relationship: analyzer.Inspired},
		},
		Docs: "Disallow focused tests.",
	},
	On: analyzer.Ast("call_expression"),
	RunFunc: func(ctx *analyzer.RuleContext, _ *analyzer.NoOptions) (focus, bool) {
		callee := slotElement(ctx.Node(), "function")
		switch c := callee.(type) {
		case *syntax.Token:
			if _, ok := focusedAliases[c.Text()]; ok && c.Kind() == "identifier" {
				return focus{Alias: c}, true
			}
		case *syntax.Node:
			if c.Kind() == "member_expression" && c.SlotText("property") == "only" && isTestCallee(slotElement(c, "object")) {
				return focus{Member: c}, true
			}
		}
		return focus{}, false
	},
	DiagnosticFunc: func(ctx *analyzer.RuleContext, f focus) *analyzer.RuleDiagnostic {
		r := ctx.Node().Range()
		if f.Member != nil {
			if p, ok := f.Member.Slot("property"); ok {
				r = p.Range()
			}
		} else {
			r = f.Alias.Range()
		}
		return analyzer.NewRuleDiagnostic(r, "Don't focus the test.").
			WithLog("The 'only' method is often used for debugging or during implementation. It should be removed before deploying to production.").
			WithLog("Consider removing 'only' to ensure all tests are executed.")
	},
	ActionFunc: func(ctx *analyzer.RuleContext, f focus, _ *analyzer.NoOptions) *analyzer.RuleAction {
		m := ctx.NewMutation()
		if f.Alias != nil {
			m.Replace(f.Alias, focusedAliases[f.Alias.Text()])
		} else {
			obj, ok := f.Member.Slot("object")
			if !ok {
				return nil
			}
			m.Replace(f.Member, obj.Text())
		}
		return analyzer.NewRuleAction("Remove focus from test.", m)
	},
}

// isTestCallee accepts describe, it.each and similar chains.
func isTestCallee(el syntax.Element) bool {
	switch e := el.(type) {
	case *syntax.Token:
		return e.Kind() == "identifier" && testFunctions[e.Text()]
	case *syntax.Node:
		if e.Kind() != "member_expression" {
			return false
		}
		return isTestCallee(slotElement(e, "object")) && e.SlotText("property") != "only"
	}
	return false
}
