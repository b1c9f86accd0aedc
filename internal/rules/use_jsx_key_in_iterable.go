package rules

import (
	"weblint/internal/analyzer"
	"weblint/internal/syntax"
)

var iterableCallbacks = map[string]bool{"map": true, "flatMap": true, "from": true}

var useJsxKeyInIterable = &analyzer.TypedRule[[]*syntax.Node, analyzer.NoOptions]{
	Meta: analyzer.RuleMetadata{
		Version:     "1.6.0",
		Name:        "useJsxKeyInIterable",
		Group:       "correctness",
		Language:    "jsx",
		Recommended: true,
		Domains:     analyzer.Domains(analyzer.DomainReact),
		Sources:     []analyzer.RuleSource{{Tool: "eslint-plugin-react", ID: "jsx-key"}},
		Docs:        "Disallow missing key props in iterators and collection literals.",
	},
	On: analyzer.Ast("call_expression", "array"),
	RunFunc: func(ctx *analyzer.RuleContext, _ *analyzer.NoOptions) ([]*syntax.Node, bool) {
		n := ctx.Node()
		var missing []*syntax.Node
		if n.Kind() == "array" {
			for _, el := range n.ChildNodes() {
				if jsx := jsxElement(el); jsx != nil && !hasKey(jsx) {
					missing = append(missing, jsx)
				}
			}
			return missing, len(missing) > 0
		}
		callee := n.SlotNode("function")
		if callee == nil || callee.Kind() != "member_expression" || !iterableCallbacks[callee.SlotText("property")] {
			return nil, false
		}
		args := callArguments(n)
		if callee.SlotText("property") == "from" {
			// Array.from(items, item => <li/>)
			if callee.SlotText("object") != "Array" || len(args) < 2 {
				return nil, false
			}
			args = args[1:]
		}
		if len(args) == 0 || !isKind(args[0], "arrow_function", "function_expression", "function") {
			return nil, false
		}
		for _, jsx := range returnedJSX(args[0].(*syntax.Node)) {
			if !hasKey(jsx) {
				missing = append(missing, jsx)
			}
		}
		return missing, len(missing) > 0
	},
	DiagnosticFunc: func(_ *analyzer.RuleContext, missing []*syntax.Node) *analyzer.RuleDiagnostic {
		d := analyzer.NewRuleDiagnostic(openingTag(missing[0]).Range(), "Missing key property for this element in iterable.")
		for _, jsx := range missing[1:] {
			d.WithNote(openingTag(jsx).Range(), "This element is missing a key as well.")
		}
		return d.WithLog("The order of the items may change, and having a key can help React identify which item was moved.")
	},
}

func jsxElement(el syntax.Element) *syntax.Node {
	n, ok := unparen(el).(*syntax.Node)
	if !ok || (n.Kind() != "jsx_element" && n.Kind() != "jsx_self_closing_element") {
		return nil
	}
	return n
}

// returnedJSX collects the JSX elements a callback returns, without looking
// into nested functions.
func returnedJSX(fn *syntax.Node) []*syntax.Node {
	body, ok := fn.Slot("body")
	if !ok {
		return nil
	}
	if jsx := jsxElement(body); jsx != nil {
		return []*syntax.Node{jsx}
	}
	block, ok := body.(*syntax.Node)
	if !ok || block.Kind() != "statement_block" {
		return nil
	}
	var out []*syntax.Node
	var visit func(n *syntax.Node)
	visit = func(n *syntax.Node) {
		for _, c := range n.ChildNodes() {
			switch {
			case isKind(c, functionKinds...), c.Kind() == "class":
			case c.Kind() == "return_statement":
				for _, v := range c.ChildNodes() {
					if jsx := jsxElement(v); jsx != nil {
						out = append(out, jsx)
					}
				}
			default:
				visit(c)
			}
		}
	}
	visit(block)
	return out
}

func openingTag(jsx *syntax.Node) *syntax.Node {
	if jsx.Kind() == "jsx_element" {
		if open := jsx.SlotNode("open_tag"); open != nil {
			return open
		}
	}
	return jsx
}

// hasKey reports a key attribute or a spread that may carry one.
func hasKey(jsx *syntax.Node) bool {
	for _, attr := range openingTag(jsx).ChildNodes() {
		switch attr.Kind() {
		case "jsx_attribute":
			if tok := attr.ChildToken("property_identifier"); tok != nil && tok.Text() == "key" {
				return true
			}
		case "jsx_expression":
			if attr.FirstChildOfKind("spread_element") != nil {
				return true
			}
		}
	}
	return false
}
