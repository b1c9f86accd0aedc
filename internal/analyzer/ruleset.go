package analyzer

import "math/bits"

// RuleSet is a set of rule indexes of one Registry, one bit per rule.
type RuleSet struct {
	bits []uint64
}

func (s *RuleSet) grow(i int) {
	if need := i/64 + 1; need > len(s.bits) {
		s.bits = append(s.bits, make([]uint64, need-len(s.bits))...)
	}
}

func (s *RuleSet) Add(i int) {
	s.grow(i)
	s.bits[i/64] |= 1 << (uint(i) % 64)
}

func (s *RuleSet) Remove(i int) {
	if i/64 < len(s.bits) {
		s.bits[i/64] &^= 1 << (uint(i) % 64)
	}
}

func (s RuleSet) Has(i int) bool {
	return i >= 0 && i/64 < len(s.bits) && s.bits[i/64]&(1<<(uint(i)%64)) != 0
}

func (s *RuleSet) UnionWith(o RuleSet) {
	if len(o.bits) > len(s.bits) {
		s.grow(len(o.bits)*64 - 1)
	}
	for i, w := range o.bits {
		s.bits[i] |= w
	}
}

func (s *RuleSet) SubtractWith(o RuleSet) {
	for i := range s.bits {
		if i < len(o.bits) {
			s.bits[i] &^= o.bits[i]
		}
	}
}

func (s *RuleSet) IntersectWith(o RuleSet) {
	for i := range s.bits {
		if i < len(o.bits) {
			s.bits[i] &= o.bits[i]
		} else {
			s.bits[i] = 0
		}
	}
}

func (s RuleSet) Clone() RuleSet {
	return RuleSet{bits: append([]uint64(nil), s.bits...)}
}

// Len returns the number of members.
func (s RuleSet) Len() int {
	n := 0
	for _, w := range s.bits {
		n += bits.OnesCount64(w)
	}
	return n
}

func (s RuleSet) Empty() bool { return s.Len() == 0 }

// Slice returns the members in ascending order, which is dispatch order.
func (s RuleSet) Slice() []int {
	out := make([]int, 0, s.Len())
	for wi, w := range s.bits {
		for w != 0 {
			b := bits.TrailingZeros64(w)
			out = append(out, wi*64+b)
			w &^= 1 << uint(b)
		}
	}
	return out
}

// Equal compares membership, ignoring trailing zero words.
func (s RuleSet) Equal(o RuleSet) bool {
	n := max(len(s.bits), len(o.bits))
	for i := range n {
		var a, b uint64
		if i < len(s.bits) {
			a = s.bits[i]
		}
		if i < len(o.bits) {
			b = o.bits[i]
		}
		if a != b {
			return false
		}
	}
	return true
}
