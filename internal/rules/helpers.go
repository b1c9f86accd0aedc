package rules

import (
	"strings"

	"weblint/internal/analyzer"
	"weblint/internal/syntax"
)

// unparen strips parenthesized_expression wrappers.
func unparen(el syntax.Element) syntax.Element {
	for {
		n, ok := el.(*syntax.Node)
		if !ok || n.Kind() != "parenthesized_expression" {
			return el
		}
		inner := n.ChildNodes()
		if len(inner) == 1 {
			el = inner[0]
			continue
		}
		// (ident) keeps the identifier as a direct token
		var tok syntax.Element
		for _, c := range n.Children() {
			if t, ok := c.(*syntax.Token); ok && t.Kind() != "(" && t.Kind() != ")" {
				tok = t
			}
		}
		if tok == nil {
			return el
		}
		el = tok
	}
}

// stringValue returns the contents of a string literal, or of a template
// string without substitutions.
func stringValue(el syntax.Element) (string, bool) {
	tok, ok := el.(*syntax.Token)
	if !ok {
		return "", false
	}
	text := tok.Text()
	switch tok.Kind() {
	case "string", "template_string":
	default:
		return "", false
	}
	if len(text) < 2 {
		return "", false
	}
	return text[1 : len(text)-1], true
}

func isKind(el syntax.Element, kinds ...syntax.Kind) bool {
	if el == nil {
		return false
	}
	for _, k := range kinds {
		if el.Kind() == k {
			return true
		}
	}
	return false
}

// slotElement is Slot without the ok flag.
func slotElement(n *syntax.Node, name string) syntax.Element {
	if el, ok := n.Slot(name); ok {
		return el
	}
	return nil
}

var functionKinds = []syntax.Kind{
	"function_declaration", "generator_function_declaration", "function_expression",
	"function", "generator_function", "arrow_function", "method_definition",
}

// enclosingFunction returns the nearest function-like ancestor of n.
func enclosingFunction(n *syntax.Node) *syntax.Node {
	return syntax.AncestorOfKind(n.Parent(), functionKinds...)
}

func isAsync(fn *syntax.Node) bool {
	return fn != nil && fn.ChildToken("async") != nil
}

// quoteLike re-quotes s with the quote character of the literal it replaces.
func quoteLike(literal, s string) string {
	q := "\""
	if literal != "" {
		q = literal[:1]
	}
	return q + strings.ReplaceAll(s, q, "\\"+q) + q
}

// blankLineBefore reports an empty line between tok and the previous token.
func blankLineBefore(tok *syntax.Token) bool {
	n := 0
	if prev := tok.Prev(); prev != nil {
		for _, tr := range prev.Trailing() {
			n += strings.Count(tr.Text, "\n")
		}
	}
	for _, tr := range tok.Leading() {
		n += strings.Count(tr.Text, "\n")
	}
	return n >= 2
}

func isDeclarationFile(ctx *analyzer.RuleContext) bool {
	f := ctx.File()
	return f != nil && strings.HasSuffix(f.Path, ".d.ts")
}

// callArguments returns the argument expressions of a call, without
// parentheses and commas.
func callArguments(call *syntax.Node) []syntax.Element {
	args := call.SlotNode("arguments")
	if args == nil {
		return nil
	}
	var out []syntax.Element
	for _, c := range args.Children() {
		if isKind(c, "(", ")", ",") {
			continue
		}
		out = append(out, c)
	}
	return out
}
