package rules

import (
	"strings"

	"weblint/internal/analyzer"
	"weblint/internal/semantic"
	"weblint/internal/syntax"
)

type unusedVariablesOptions struct {
	// IgnoreRestSiblings skips names destructured next to a ...rest element.
	IgnoreRestSiblings bool `json:"ignoreRestSiblings"`
}

var noUnusedVariables = &analyzer.TypedRule[*semantic.Binding, unusedVariablesOptions]{
	Meta: analyzer.RuleMetadata{
		Version:     "1.0.0",
		Name:        "noUnusedVariables",
		Group:       "correctness",
		Language:    "js",
		Recommended: true,
		Fix:         analyzer.FixUnsafe,
		Sources: []analyzer.RuleSource{
			{Tool: "eslint", ID: "no-unused-vars"},
			{Tool: "typescript-eslint", ID: "no-unused-vars"},
		},
		Docs: "Disallow unused variables.",
	},
	On: analyzer.Semantic("identifier", "shorthand_property_identifier_pattern"),
	RunFunc: func(ctx *analyzer.RuleContext, o *unusedVariablesOptions) (*semantic.Binding, bool) {
		tok := ctx.Token()
		if tok == nil || isDeclarationFile(ctx) {
			return nil, false
		}
		model := ctx.Semantic()
		b, ok := model.BindingOf(tok)
		if !ok || b.Token != tok || !reportableBinding(b) {
			return nil, false
		}
		if len(model.Reads(b.ID)) > 0 {
			return nil, false
		}
		if o.IgnoreRestSiblings && hasRestSibling(tok) {
			return nil, false
		}
		return b, true
	},
	DiagnosticFunc: func(_ *analyzer.RuleContext, b *semantic.Binding) *analyzer.RuleDiagnostic {
		return analyzer.NewRuleDiagnostic(b.Token.Range(), "This "+bindingNoun(b)+" "+b.Name+" is unused.").
			WithLog("Unused variables are often the result of typos, incomplete refactors, or other sources of bugs.")
	},
	ActionFunc: func(ctx *analyzer.RuleContext, b *semantic.Binding, _ *unusedVariablesOptions) *analyzer.RuleAction {
		if b.Kind == semantic.BindFunction || b.Kind == semantic.BindClass {
			return nil
		}
		renamed := "_" + b.Name
		model := ctx.Semantic()
		m := ctx.NewMutation()
		if b.Token.Kind() == "shorthand_property_identifier_pattern" {
			m.Replace(b.Token, b.Name+": "+renamed)
		} else {
			m.Replace(b.Token, renamed)
		}
		for _, ref := range model.References(b.ID) {
			m.Replace(ref.Token, renamed)
		}
		return analyzer.NewRuleAction("If this is intentional, prepend "+b.Name+" with an underscore.", m)
	},
	Defaults: func() *unusedVariablesOptions { return &unusedVariablesOptions{IgnoreRestSiblings: true} },
}

func reportableBinding(b *semantic.Binding) bool {
	if b.Exported || strings.HasPrefix(b.Name, "_") {
		return false
	}
	switch b.Kind {
	case semantic.BindParameter, semantic.BindCatch, semantic.BindImport, semantic.BindType:
		return false
	case semantic.BindFunction:
		// the name of a function expression is local to its body
		if b.Decl != nil && b.Decl.Kind() != "function_declaration" && b.Decl.Kind() != "generator_function_declaration" {
			return false
		}
	}
	if b.Decl != nil && syntax.AncestorOfKind(b.Decl, "ambient_declaration") != nil {
		return false
	}
	return true
}

func hasRestSibling(tok *syntax.Token) bool {
	p := tok.Parent()
	if p != nil && p.Kind() == "pair_pattern" {
		p = p.Parent()
	}
	if p == nil || p.Kind() != "object_pattern" {
		return false
	}
	return p.FirstChildOfKind("rest_pattern") != nil
}

func bindingNoun(b *semantic.Binding) string {
	switch b.Kind {
	case semantic.BindFunction:
		return "function"
	case semantic.BindClass:
		return "class"
	case semantic.BindEnum:
		return "enum"
	}
	return "variable"
}
