package syntax

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrOverlappingMutation is returned by Commit when two operations touch
// overlapping ranges of the same tree. Insertions at the same offset do not
// conflict with each other.
var ErrOverlappingMutation = errors.New("overlapping mutation")

type mutationKind uint8

const (
	mutReplace mutationKind = iota
	mutRemove
	mutInsert
)

type mutation struct {
	kind  mutationKind
	rng   TextRange
	text  string
	order int
}

// BatchMutation records replace/remove operations against one tree and
// produces the edited source in a single pass at Commit. The original tree
// is never modified.
type BatchMutation struct {
	tree *Tree
	ops  []mutation
}

// NewBatchMutation starts a mutation against tree.
func NewBatchMutation(tree *Tree) *BatchMutation {
	return &BatchMutation{tree: tree}
}

// Tree returns the tree the mutation applies to.
func (m *BatchMutation) Tree() *Tree { return m.tree }

// Len returns the number of recorded operations.
func (m *BatchMutation) Len() int { return len(m.ops) }

func (m *BatchMutation) push(kind mutationKind, r TextRange, text string) {
	m.ops = append(m.ops, mutation{kind: kind, rng: r, text: text, order: len(m.ops)})
}

// Replace swaps the trimmed text of old for text; trivia around old is kept.
func (m *BatchMutation) Replace(old Element, text string) {
	m.push(mutReplace, old.Range(), text)
}

// ReplaceElement swaps old for the trimmed text of next. next may belong to
// another tree.
func (m *BatchMutation) ReplaceElement(old, next Element) {
	m.Replace(old, next.Text())
}

// ReplaceFull swaps old including its trivia.
func (m *BatchMutation) ReplaceFull(old Element, text string) {
	m.push(mutReplace, old.FullRange(), text)
}

// Remove deletes el together with its trailing trivia and the whitespace
// that immediately precedes it. Comments in the leading trivia survive.
func (m *BatchMutation) Remove(el Element) {
	m.push(mutRemove, removalRange(el), "")
}

// InsertBefore inserts text right before the trimmed start of el.
func (m *BatchMutation) InsertBefore(el Element, text string) {
	r := el.Range()
	m.push(mutInsert, TextRange{r.Start, r.Start}, text)
}

// InsertAfter inserts text right after the trimmed end of el.
func (m *BatchMutation) InsertAfter(el Element, text string) {
	r := el.Range()
	m.push(mutInsert, TextRange{r.End, r.End}, text)
}

// InsertAt inserts text at a raw offset, which may fall inside trivia.
func (m *BatchMutation) InsertAt(off uint32, text string) {
	m.push(mutInsert, TextRange{off, off}, text)
}

// Extend appends the operations of o. Both must target the same tree.
func (m *BatchMutation) Extend(o *BatchMutation) {
	for _, op := range o.ops {
		m.push(op.kind, op.rng, op.text)
	}
}

// Ranges returns the touched ranges in recording order.
func (m *BatchMutation) Ranges() []TextRange {
	out := make([]TextRange, len(m.ops))
	for i, op := range m.ops {
		out[i] = op.rng
	}
	return out
}

// Span returns the smallest range covering every operation.
func (m *BatchMutation) Span() TextRange {
	if len(m.ops) == 0 {
		return TextRange{}
	}
	r := m.ops[0].rng
	for _, op := range m.ops[1:] {
		r.Start = min(r.Start, op.rng.Start)
		r.End = max(r.End, op.rng.End)
	}
	return r
}

// Commit rebuilds the source text with every operation applied.
func (m *BatchMutation) Commit() (string, error) {
	ops := append([]mutation(nil), m.ops...)
	sort.SliceStable(ops, func(i, j int) bool {
		if ops[i].rng.Start != ops[j].rng.Start {
			return ops[i].rng.Start < ops[j].rng.Start
		}
		// вставки в точке идут раньше замены, начинающейся там же
		if ops[i].rng.Empty() != ops[j].rng.Empty() {
			return ops[i].rng.Empty()
		}
		return ops[i].order < ops[j].order
	})
	for i := 1; i < len(ops); i++ {
		if ops[i-1].rng.End > ops[i].rng.Start {
			return "", fmt.Errorf("%w: [%d,%d) and [%d,%d)", ErrOverlappingMutation,
				ops[i-1].rng.Start, ops[i-1].rng.End, ops[i].rng.Start, ops[i].rng.End)
		}
	}

	src := m.tree.text
	var b strings.Builder
	b.Grow(len(src))
	cursor := uint32(0)
	for _, op := range ops {
		b.WriteString(src[cursor:op.rng.Start])
		b.WriteString(op.text)
		cursor = op.rng.End
	}
	b.WriteString(src[cursor:])
	return b.String(), nil
}

func removalRange(el Element) TextRange {
	r := el.Range()
	var first, last *Token
	switch e := el.(type) {
	case *Token:
		first, last = e, e
	case *Node:
		first, last = e.first, e.last
	}
	if first == nil {
		return r
	}
	// leading: only the whitespace run after the last comment
	lead := first.leading
	i := len(lead)
	for i > 0 && !lead[i-1].Kind.IsComment() {
		i--
	}
	if i < len(lead) {
		r.Start = lead[i].Start
	}
	if n := len(last.trailing); n > 0 {
		r.End = last.trailing[n-1].End()
	}
	return r
}
