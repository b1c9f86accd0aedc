package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"weblint/internal/syntax"
)

// CheckTreeInvariants runs the structural invariants every parsed tree must hold:
// 1) concatenating token full texts reproduces the source byte-for-byte
// 2) tokens are ordered, non-overlapping and their full ranges tile the source
// 3) every node range covers the ranges of its children
// 4) parent/index links are consistent and node ids follow pre-order
func CheckTreeInvariants(tree *syntax.Tree) error {
	if tree == nil {
		return fmt.Errorf("nil tree")
	}

	// 1) lossless
	if got := tree.Text(); got != tree.Source() {
		return fmt.Errorf("tree text differs from source: %q vs %q", got, tree.Source())
	}

	// 2) tokens tile the source
	srcLen, err := safecast.Conv[uint32](len(tree.Source()))
	if err != nil {
		return fmt.Errorf("len source overflow: %w", err)
	}
	var cursor uint32
	for i, tok := range tree.Tokens() {
		fr := tok.FullRange()
		if fr.Start != cursor {
			return fmt.Errorf("token %d (%q) starts at %d, expected %d", i, tok.Kind(), fr.Start, cursor)
		}
		r := tok.Range()
		if r.Start < fr.Start || r.End > fr.End {
			return fmt.Errorf("token %d trimmed range %v outside full range %v", i, r, fr)
		}
		cursor = fr.End
	}
	if cursor != srcLen {
		return fmt.Errorf("tokens end at %d, source has %d bytes", cursor, srcLen)
	}

	// 3) + 4)
	var next syntax.NodeID
	for n := range tree.Root().Descendants() {
		if n.ID() != next {
			return fmt.Errorf("node %q has id %d, expected %d", n.Kind(), n.ID(), next)
		}
		next++
		for i, c := range n.Children() {
			if c.Parent() != n || c.IndexInParent() != i {
				return fmt.Errorf("child %d of %q has broken parent link", i, n.Kind())
			}
			if !n.FullRange().Covers(c.FullRange()) {
				return fmt.Errorf("child %q %v escapes parent %q %v", c.Kind(), c.FullRange(), n.Kind(), n.FullRange())
			}
		}
	}
	return nil
}
