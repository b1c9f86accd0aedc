package syntax

import (
	"iter"
	"sort"
	"strings"
)

// Kind is the grammar tag of a node or token ("lexical_declaration",
// "identifier", ";"). Anonymous tokens use their literal text as kind.
type Kind string

// KindEOF tags the synthetic end-of-file token.
const KindEOF Kind = "EOF"

// KindError tags nodes the parser could not make sense of.
const KindError Kind = "ERROR"

// TextRange is a half-open byte range within a tree's source text.
type TextRange struct {
	Start uint32
	End   uint32
}

func (r TextRange) Len() uint32              { return r.End - r.Start }
func (r TextRange) Empty() bool              { return r.Start == r.End }
func (r TextRange) Contains(off uint32) bool { return off >= r.Start && off < r.End }

// Covers reports whether o lies fully inside r.
func (r TextRange) Covers(o TextRange) bool {
	return o.Start >= r.Start && o.End <= r.End
}

// Overlaps uses the same rules as source.Span.Intersects.
func (r TextRange) Overlaps(o TextRange) bool {
	switch {
	case r.Empty() && o.Empty():
		return r.Start == o.Start
	case r.Empty():
		return r.Start > o.Start && r.Start < o.End
	case o.Empty():
		return o.Start > r.Start && o.Start < r.End
	}
	return r.Start < o.End && o.Start < r.End
}

// Element is implemented by *Node and *Token.
type Element interface {
	Kind() Kind
	// Range excludes leading and trailing trivia.
	Range() TextRange
	// FullRange includes trivia.
	FullRange() TextRange
	Parent() *Node
	Text() string
	FullText() string
	// IndexInParent is the position among the parent's children, -1 for the root.
	IndexInParent() int
	Tree() *Tree
	isElement()
}

// Token is a leaf of the tree.
type Token struct {
	tree     *Tree
	kind     Kind
	start    uint32
	end      uint32
	leading  []Trivia
	trailing []Trivia
	parent   *Node
	index    int
	ordinal  int
	missing  bool
}

func (t *Token) Kind() Kind         { return t.kind }
func (t *Token) Range() TextRange   { return TextRange{t.start, t.end} }
func (t *Token) Parent() *Node      { return t.parent }
func (t *Token) IndexInParent() int { return t.index }
func (t *Token) Tree() *Tree        { return t.tree }
func (t *Token) Leading() []Trivia  { return t.leading }
func (t *Token) Trailing() []Trivia { return t.trailing }
func (t *Token) Text() string       { return t.tree.text[t.start:t.end] }
func (t *Token) IsMissing() bool    { return t.missing }
func (t *Token) isElement()         {}

func (t *Token) FullText() string {
	r := t.FullRange()
	return t.tree.text[r.Start:r.End]
}

func (t *Token) FullRange() TextRange {
	r := TextRange{t.start, t.end}
	if len(t.leading) > 0 {
		r.Start = t.leading[0].Start
	}
	if n := len(t.trailing); n > 0 {
		r.End = t.trailing[n-1].End()
	}
	return r
}

// Next returns the following token in source order, nil after EOF.
func (t *Token) Next() *Token {
	if t.ordinal+1 < len(t.tree.tokens) {
		return t.tree.tokens[t.ordinal+1]
	}
	return nil
}

// Prev returns the preceding token in source order.
func (t *Token) Prev() *Token {
	if t.ordinal > 0 {
		return t.tree.tokens[t.ordinal-1]
	}
	return nil
}

// HasLeadingNewline reports whether a newline precedes the token.
func (t *Token) HasLeadingNewline() bool {
	for _, tr := range t.leading {
		if tr.Kind == TriviaNewline {
			return true
		}
	}
	return false
}

// HasLeadingComments reports whether any comment precedes the token.
func (t *Token) HasLeadingComments() bool {
	for _, tr := range t.leading {
		if tr.Kind.IsComment() {
			return true
		}
	}
	return false
}

// slot binds a grammar field name to a child position.
type slot struct {
	name  string
	index int
}

// Node is an interior element. Children are ordered; named grammar fields
// are reachable through the slot map.
type Node struct {
	tree     *Tree
	kind     Kind
	id       NodeID
	children []Element
	slots    []slot
	parent   *Node
	index    int
	first    *Token
	last     *Token
	pos      uint32 // position used when the node holds no tokens
	hasError bool
}

// NodeID is the pre-order number of a node inside its tree.
type NodeID uint32

func (n *Node) Kind() Kind          { return n.kind }
func (n *Node) ID() NodeID          { return n.id }
func (n *Node) Parent() *Node       { return n.parent }
func (n *Node) IndexInParent() int  { return n.index }
func (n *Node) Tree() *Tree         { return n.tree }
func (n *Node) Children() []Element { return n.children }
func (n *Node) FirstToken() *Token  { return n.first }
func (n *Node) LastToken() *Token   { return n.last }
func (n *Node) HasError() bool      { return n.hasError }
func (n *Node) isElement()          {}

func (n *Node) Range() TextRange {
	if n.first == nil {
		return TextRange{n.pos, n.pos}
	}
	return TextRange{n.first.start, n.last.end}
}

func (n *Node) FullRange() TextRange {
	if n.first == nil {
		return TextRange{n.pos, n.pos}
	}
	return TextRange{n.first.FullRange().Start, n.last.FullRange().End}
}

func (n *Node) Text() string {
	r := n.Range()
	return n.tree.text[r.Start:r.End]
}

func (n *Node) FullText() string {
	r := n.FullRange()
	return n.tree.text[r.Start:r.End]
}

// Slot returns the child bound to a grammar field name.
func (n *Node) Slot(name string) (Element, bool) {
	for _, s := range n.slots {
		if s.name == name {
			return n.children[s.index], true
		}
	}
	return nil, false
}

// SlotNode is Slot restricted to nodes.
func (n *Node) SlotNode(name string) *Node {
	if el, ok := n.Slot(name); ok {
		if nd, ok := el.(*Node); ok {
			return nd
		}
	}
	return nil
}

// SlotText returns the trimmed text of a slot, "" when absent.
func (n *Node) SlotText(name string) string {
	if el, ok := n.Slot(name); ok {
		return el.Text()
	}
	return ""
}

// SlotAll returns every child bound to name, in order.
func (n *Node) SlotAll(name string) []Element {
	var out []Element
	for _, s := range n.slots {
		if s.name == name {
			out = append(out, n.children[s.index])
		}
	}
	return out
}

// SlotName returns the field name of the child at index i, if any.
func (n *Node) SlotName(i int) string {
	for _, s := range n.slots {
		if s.index == i {
			return s.name
		}
	}
	return ""
}

// ChildNodes returns the node children only.
func (n *Node) ChildNodes() []*Node {
	out := make([]*Node, 0, len(n.children))
	for _, c := range n.children {
		if nd, ok := c.(*Node); ok {
			out = append(out, nd)
		}
	}
	return out
}

// ChildToken returns the first direct token child with the given kind.
func (n *Node) ChildToken(kind Kind) *Token {
	for _, c := range n.children {
		if t, ok := c.(*Token); ok && t.kind == kind {
			return t
		}
	}
	return nil
}

// FirstChildOfKind returns the first direct node child of the given kind.
func (n *Node) FirstChildOfKind(kind Kind) *Node {
	for _, c := range n.children {
		if nd, ok := c.(*Node); ok && nd.kind == kind {
			return nd
		}
	}
	return nil
}

// Ancestors yields the parent chain, nearest first.
func (n *Node) Ancestors() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for p := n.parent; p != nil; p = p.parent {
			if !yield(p) {
				return
			}
		}
	}
}

// Descendants yields n and every node below it in pre-order.
func (n *Node) Descendants() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		n.descend(yield)
	}
}

func (n *Node) descend(yield func(*Node) bool) bool {
	if !yield(n) {
		return false
	}
	for _, c := range n.children {
		if nd, ok := c.(*Node); ok {
			if !nd.descend(yield) {
				return false
			}
		}
	}
	return true
}

// Tokens yields the node's tokens in source order.
func (n *Node) Tokens() iter.Seq[*Token] {
	return func(yield func(*Token) bool) {
		if n.first == nil {
			return
		}
		for i := n.first.ordinal; i <= n.last.ordinal; i++ {
			if !yield(n.tree.tokens[i]) {
				return
			}
		}
	}
}

// Tree is an immutable lossless syntax tree. Trees are safe for concurrent
// readers; edits go through BatchMutation and produce new text.
type Tree struct {
	text   string
	lang   Language
	root   *Node
	tokens []*Token
	nodes  []*Node
}

func (t *Tree) Root() *Node        { return t.root }
func (t *Tree) Language() Language { return t.lang }
func (t *Tree) Source() string     { return t.text }
func (t *Tree) Tokens() []*Token   { return t.tokens }
func (t *Tree) NodeCount() int     { return len(t.nodes) }

// Node returns the node with the given pre-order id.
func (t *Tree) Node(id NodeID) *Node {
	if int(id) < len(t.nodes) {
		return t.nodes[id]
	}
	return nil
}

// Text rebuilds the source by concatenating every token with its trivia.
func (t *Tree) Text() string {
	var b strings.Builder
	b.Grow(len(t.text))
	for _, tok := range t.tokens {
		for _, tr := range tok.leading {
			b.WriteString(tr.Text)
		}
		b.WriteString(tok.Text())
		for _, tr := range tok.trailing {
			b.WriteString(tr.Text)
		}
	}
	return b.String()
}

// TokenAt returns the token whose full range contains off.
func (t *Tree) TokenAt(off uint32) *Token {
	i := sort.Search(len(t.tokens), func(i int) bool {
		return t.tokens[i].FullRange().End > off
	})
	if i < len(t.tokens) {
		return t.tokens[i]
	}
	return nil
}

// CoveringNode returns the deepest node whose range covers r.
func (t *Tree) CoveringNode(r TextRange) *Node {
	cur := t.root
	for {
		next := (*Node)(nil)
		for _, c := range cur.children {
			nd, ok := c.(*Node)
			if ok && nd.Range().Covers(r) {
				next = nd
				break
			}
		}
		if next == nil {
			return cur
		}
		cur = next
	}
}

// HasErrors reports whether the parser produced error or missing elements.
func (t *Tree) HasErrors() bool {
	return t.root.hasError
}
