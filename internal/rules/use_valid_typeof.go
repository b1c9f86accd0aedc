package rules

import (
	"weblint/internal/analyzer"
	"weblint/internal/config"
	"weblint/internal/syntax"
	"weblint/internal/types"
)

type typeofProblem uint8

const (
	typeofInvalidString typeofProblem = iota
	typeofUndefined
	typeofNotString
)

type invalidTypeof struct {
	Problem typeofProblem
	Operand syntax.Element
	// Suggestion is the closest valid typeof result, "" when none is close.
	Suggestion string
}

var useValidTypeof = &analyzer.TypedRule[invalidTypeof, analyzer.NoOptions]{
	Meta: analyzer.RuleMetadata{
		Version:     "1.0.0",
		Name:        "useValidTypeof",
		Group:       "suspicious",
		Language:    "js",
		Recommended: true,
		Fix:         analyzer.FixUnsafe,
		Sources:     []analyzer.RuleSource{{Tool: "eslint", ID: "valid-typeof"}},
		Docs:        "Enforce comparing typeof expressions against valid strings.",
	},
	On: analyzer.Ast("binary_expression"),
	RunFunc: func(ctx *analyzer.RuleContext, _ *analyzer.NoOptions) (invalidTypeof, bool) {
		n := ctx.Node()
		switch n.SlotText("operator") {
		case "==", "===", "!=", "!==":
		default:
			return invalidTypeof{}, false
		}
		left, right := unparen(slotElement(n, "left")), unparen(slotElement(n, "right"))
		var other syntax.Element
		switch {
		case isTypeof(left):
			other = right
		case isTypeof(right):
			other = left
		default:
			return invalidTypeof{}, false
		}
		if other == nil {
			return invalidTypeof{}, false
		}
		catalog := types.Global()
		if s, ok := stringValue(other); ok {
			if catalog.IsTypeofName(s) {
				return invalidTypeof{}, false
			}
			sugg, _ := config.Suggest(s, types.TypeofNames)
			return invalidTypeof{Problem: typeofInvalidString, Operand: other, Suggestion: sugg}, true
		}
		switch other.Kind() {
		case "undefined":
			return invalidTypeof{Problem: typeofUndefined, Operand: other, Suggestion: "undefined"}, true
		case "number", "true", "false", "null", "regex", "object", "array":
			return invalidTypeof{Problem: typeofNotString, Operand: other}, true
		}
		return invalidTypeof{}, false
	},
	DiagnosticFunc: func(_ *analyzer.RuleContext, s invalidTypeof) *analyzer.RuleDiagnostic {
		var msg string
		switch s.Problem {
		case typeofInvalidString:
			msg = "Invalid typeof comparison value: this expression is not a valid typeof result."
		case typeofUndefined:
			msg = "Invalid typeof comparison value: undefined is not a string."
		default:
			msg = "Invalid typeof comparison value: this expression is not a string literal."
		}
		d := analyzer.NewRuleDiagnostic(s.Operand.Range(), msg).
			WithNote(s.Operand.Range(), "not a valid type name")
		return d.WithLog("The typeof operator only returns one of: bigint, boolean, function, number, object, string, symbol, undefined.")
	},
	ActionFunc: func(ctx *analyzer.RuleContext, s invalidTypeof, _ *analyzer.NoOptions) *analyzer.RuleAction {
		if s.Suggestion == "" {
			return nil
		}
		m := ctx.NewMutation()
		lit := ""
		if s.Problem == typeofInvalidString {
			lit = s.Operand.Text()
		}
		m.Replace(s.Operand, quoteLike(lit, s.Suggestion))
		return analyzer.NewRuleAction("Compare the result of `typeof` with a valid type name: "+s.Suggestion, m)
	},
}

func isTypeof(el syntax.Element) bool {
	n, ok := el.(*syntax.Node)
	return ok && n.Kind() == "unary_expression" && n.SlotText("operator") == "typeof"
}
