package syntax

import (
	"fmt"

	"fortio.org/safecast"
)

// Builder assembles a Tree from a stream of StartNode/Token/FinishNode calls.
// Gaps between tokens become trivia, so the finished tree is lossless by
// construction.
type Builder struct {
	tree    *Tree
	stack   []*Node
	pending string // slot name for the next child
}

// NewBuilder starts a tree over text.
func NewBuilder(lang Language, text string) *Builder {
	if _, err := safecast.Conv[uint32](len(text)); err != nil {
		panic(fmt.Errorf("source too large: %w", err))
	}
	return &Builder{tree: &Tree{text: text, lang: lang}}
}

// StartNode opens a node; it becomes the parent of subsequent elements.
func (b *Builder) StartNode(kind Kind, pos uint32) {
	n := &Node{tree: b.tree, kind: kind, pos: pos, index: -1}
	if kind == KindError {
		n.hasError = true
	}
	b.attach(n)
	b.stack = append(b.stack, n)
}

// Slot names the next child element.
func (b *Builder) Slot(name string) {
	b.pending = name
}

// Token appends a leaf covering text[start:end].
func (b *Builder) Token(kind Kind, start, end uint32, missing bool) {
	if end < start || int(end) > len(b.tree.text) {
		panic(fmt.Sprintf("syntax: token %q out of bounds [%d,%d)", kind, start, end))
	}
	if n := len(b.tree.tokens); n > 0 && b.tree.tokens[n-1].end > start {
		panic(fmt.Sprintf("syntax: token %q at %d overlaps previous token", kind, start))
	}
	t := &Token{tree: b.tree, kind: kind, start: start, end: end, missing: missing, index: -1}
	t.ordinal = len(b.tree.tokens)
	b.tree.tokens = append(b.tree.tokens, t)
	b.attach(t)
	if missing {
		b.MarkError()
	}
}

// MarkError flags the current node and its ancestors as containing errors.
func (b *Builder) MarkError() {
	for _, n := range b.stack {
		n.hasError = true
	}
}

// FinishNode closes the innermost open node.
func (b *Builder) FinishNode() {
	if len(b.stack) == 0 {
		panic("syntax: FinishNode without StartNode")
	}
	n := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	if n.hasError {
		b.MarkError()
	}
}

func (b *Builder) attach(el Element) {
	if len(b.stack) == 0 {
		nd, ok := el.(*Node)
		if !ok || b.tree.root != nil {
			panic("syntax: element outside of the root node")
		}
		b.tree.root = nd
		return
	}
	parent := b.stack[len(b.stack)-1]
	idx := len(parent.children)
	switch e := el.(type) {
	case *Node:
		e.parent, e.index = parent, idx
	case *Token:
		e.parent, e.index = parent, idx
	}
	parent.children = append(parent.children, el)
	if b.pending != "" {
		parent.slots = append(parent.slots, slot{name: b.pending, index: idx})
		b.pending = ""
	}
}

// Finish closes open nodes, appends the EOF token, distributes trivia and
// numbers nodes in pre-order.
func (b *Builder) Finish() *Tree {
	t := b.tree
	if t.root == nil {
		b.StartNode("program", 0)
	}
	for len(b.stack) > 1 {
		b.FinishNode()
	}
	if len(b.stack) == 0 {
		b.stack = append(b.stack, t.root)
	}
	end := uint32(len(t.text))
	b.Token(KindEOF, end, end, false)
	b.stack = b.stack[:0]

	b.distributeTrivia()
	b.number(t.root)
	return t
}

func (b *Builder) distributeTrivia() {
	t := b.tree
	prevEnd := uint32(0)
	var prev *Token
	for _, tok := range t.tokens {
		gap := t.text[prevEnd:tok.start]
		pieces := scanTrivia(t.lang, gap, prevEnd)
		if prev == nil {
			tok.leading = pieces
		} else {
			prev.trailing, tok.leading = splitTrailing(pieces)
		}
		prevEnd = tok.end
		prev = tok
	}
}

// number assigns pre-order ids and caches first/last tokens.
func (b *Builder) number(root *Node) {
	t := b.tree
	var visit func(n *Node)
	visit = func(n *Node) {
		n.id = NodeID(len(t.nodes))
		t.nodes = append(t.nodes, n)
		for _, c := range n.children {
			switch e := c.(type) {
			case *Token:
				if n.first == nil {
					n.first = e
				}
				n.last = e
			case *Node:
				visit(e)
				if e.first != nil {
					if n.first == nil {
						n.first = e.first
					}
					n.last = e.last
				}
			}
		}
	}
	visit(root)
}
