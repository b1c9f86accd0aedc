package syntax

import "iter"

// WalkEventKind distinguishes entering and leaving a node.
type WalkEventKind uint8

const (
	Enter WalkEventKind = iota
	Leave
)

// WalkEvent is produced by Preorder.
type WalkEvent struct {
	Kind WalkEventKind
	Node *Node
}

// Preorder yields Enter/Leave events for every node below and including n.
// Stopping the iteration early is allowed.
func (n *Node) Preorder() iter.Seq[WalkEvent] {
	return func(yield func(WalkEvent) bool) {
		type frame struct {
			node *Node
			next int
		}
		stack := []frame{{node: n}}
		if !yield(WalkEvent{Kind: Enter, Node: n}) {
			return
		}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next >= len(top.node.children) {
				if !yield(WalkEvent{Kind: Leave, Node: top.node}) {
					return
				}
				stack = stack[:len(stack)-1]
				continue
			}
			child := top.node.children[top.next]
			top.next++
			if nd, ok := child.(*Node); ok {
				if !yield(WalkEvent{Kind: Enter, Node: nd}) {
					return
				}
				stack = append(stack, frame{node: nd})
			}
		}
	}
}

// AncestorOfKind returns the nearest ancestor of n with one of the kinds.
func AncestorOfKind(n *Node, kinds ...Kind) *Node {
	for p := range n.Ancestors() {
		for _, k := range kinds {
			if p.kind == k {
				return p
			}
		}
	}
	return nil
}

// ElementNode returns el as a node, or its parent when el is a token.
func ElementNode(el Element) *Node {
	switch e := el.(type) {
	case *Node:
		return e
	case *Token:
		return e.parent
	}
	return nil
}
