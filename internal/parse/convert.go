package parse

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"weblint/internal/diag"
	"weblint/internal/source"
	"weblint/internal/syntax"
)

// converter walks a tree-sitter tree and feeds the syntax.Builder.
// Comments become trivia; everything else keeps its grammar kind.
type converter struct {
	lang    syntax.Language
	file    source.FileID
	b       *syntax.Builder
	src     string
	lastEnd uint32
	diags   []diag.Diagnostic
}

func isComment(kind string) bool {
	switch kind {
	case "comment", "html_comment", "js_comment":
		return true
	}
	return false
}

// atomic kinds are emitted as single tokens even though the grammar
// gives them children.
func (c *converter) atomic(n *sitter.Node) bool {
	switch n.Type() {
	case "string", "regex", "number", "string_value", "color_value":
		return true
	case "template_string":
		for i := 0; i < int(n.ChildCount()); i++ {
			if n.Child(i).Type() == "template_substitution" {
				return false
			}
		}
		return true
	}
	return false
}

// root always becomes a node, even for an empty file.
func (c *converter) root(n *sitter.Node) {
	c.b.StartNode(syntax.Kind(n.Type()), 0)
	c.children(n)
	c.b.FinishNode()
}

func (c *converter) node(n *sitter.Node) {
	kind := n.Type()
	start, end := n.StartByte(), n.EndByte()

	if n.IsMissing() {
		c.token(syntax.Kind(kind), start, start, true)
		c.report(diag.NewError(diag.CatParse, c.span(start, start), fmt.Sprintf("expected `%s` here", kind)))
		return
	}
	if n.ChildCount() == 0 || c.atomic(n) {
		if kind == string(syntax.KindError) {
			c.report(diag.NewError(diag.CatParse, c.span(start, end), fmt.Sprintf("unexpected token `%s`", c.excerpt(start, end))))
			c.b.MarkError()
		}
		c.token(syntax.Kind(kind), start, end, false)
		return
	}

	if kind == string(syntax.KindError) {
		c.report(diag.NewError(diag.CatParse, c.span(start, end), fmt.Sprintf("unexpected syntax `%s`", c.excerpt(start, end))))
	}
	c.b.StartNode(syntax.Kind(kind), max(start, c.lastEnd))
	c.children(n)
	c.b.FinishNode()
}

func (c *converter) children(n *sitter.Node) {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || isComment(child.Type()) {
			continue
		}
		if name := n.FieldNameForChild(i); name != "" {
			c.b.Slot(name)
		}
		c.node(child)
	}
}

func (c *converter) token(kind syntax.Kind, start, end uint32, missing bool) {
	// токены tree-sitter нулевой ширины могут оказаться раньше конца предыдущего
	if start < c.lastEnd {
		if end > c.lastEnd {
			start = c.lastEnd
		} else {
			start, end = c.lastEnd, c.lastEnd
		}
	}
	c.b.Token(kind, start, end, missing)
	c.lastEnd = end
}

func (c *converter) span(start, end uint32) source.Span {
	return source.Span{File: c.file, Start: start, End: end}
}

func (c *converter) excerpt(start, end uint32) string {
	const maxLen = 24
	s := c.src[start:end]
	if len(s) > maxLen {
		s = s[:maxLen] + "…"
	}
	return s
}

func (c *converter) report(d diag.Diagnostic) {
	c.diags = append(c.diags, d)
}
