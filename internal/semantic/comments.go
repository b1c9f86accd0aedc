package semantic

import (
	"strings"

	"weblint/internal/syntax"
)

// Comment is a comment trivia together with the token that owns it.
type Comment struct {
	Trivia  syntax.Trivia
	Token   *syntax.Token
	Leading bool
}

func (c Comment) Text() string            { return c.Trivia.Text }
func (c Comment) Body() string            { return c.Trivia.CommentBody() }
func (c Comment) Range() syntax.TextRange { return c.Trivia.Range() }

// IsJsDoc reports a "/** ... */" block.
func (c Comment) IsJsDoc() bool {
	return strings.HasPrefix(c.Trivia.Text, "/**") && c.Trivia.Text != "/**/"
}

// Comments indexes every comment of a tree.
type Comments struct {
	all     []Comment
	byToken map[*syntax.Token][]int
}

// ScanComments walks the token stream once and collects comments. It works
// for every language the parser supports.
func ScanComments(tree *syntax.Tree) *Comments {
	c := &Comments{byToken: make(map[*syntax.Token][]int)}
	for _, tok := range tree.Tokens() {
		for _, tr := range tok.Leading() {
			if tr.Kind.IsComment() {
				c.add(Comment{Trivia: tr, Token: tok, Leading: true})
			}
		}
		for _, tr := range tok.Trailing() {
			if tr.Kind.IsComment() {
				c.add(Comment{Trivia: tr, Token: tok})
			}
		}
	}
	return c
}

func (c *Comments) add(cm Comment) {
	c.byToken[cm.Token] = append(c.byToken[cm.Token], len(c.all))
	c.all = append(c.all, cm)
}

// All returns the comments in source order.
func (c *Comments) All() []Comment {
	if c == nil {
		return nil
	}
	return c.all
}

func (c *Comments) Len() int { return len(c.All()) }

// Leading returns the comments before tok.
func (c *Comments) Leading(tok *syntax.Token) []Comment {
	if c == nil {
		return nil
	}
	var out []Comment
	for _, i := range c.byToken[tok] {
		if c.all[i].Leading {
			out = append(out, c.all[i])
		}
	}
	return out
}

// JsDocFor returns the cleaned body of the JSDoc block right before n. A
// declaration wrapped in an export statement also sees the block before
// "export".
func (c *Comments) JsDocFor(n *syntax.Node) (string, bool) {
	if c == nil || n == nil {
		return "", false
	}
	if doc, ok := c.jsDocBefore(n.FirstToken()); ok {
		return doc, true
	}
	if p := n.Parent(); p != nil && p.Kind() == "export_statement" {
		return c.jsDocBefore(p.FirstToken())
	}
	return "", false
}

func (c *Comments) jsDocBefore(tok *syntax.Token) (string, bool) {
	if tok == nil {
		return "", false
	}
	lead := tok.Leading()
	// только пробелы между блоком и токеном
	for i := len(lead) - 1; i >= 0; i-- {
		tr := lead[i]
		switch {
		case tr.Kind == syntax.TriviaWhitespace || tr.Kind == syntax.TriviaNewline:
			continue
		case tr.Kind == syntax.TriviaBlockComment && (Comment{Trivia: tr}).IsJsDoc():
			return cleanJsDoc(tr.Text), true
		}
		return "", false
	}
	return "", false
}

func cleanJsDoc(text string) string {
	text = strings.TrimSuffix(strings.TrimPrefix(text, "/**"), "*/")
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.TrimSpace(l)
		l = strings.TrimPrefix(l, "*")
		out = append(out, strings.TrimSpace(l))
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
