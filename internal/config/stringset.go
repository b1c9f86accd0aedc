package config

import "slices"

// StringSet is an ordered set of strings. Duplicates collapse on insert;
// nil means unset.
type StringSet []string

func NewStringSet(items ...string) StringSet {
	s := make(StringSet, 0, len(items))
	for _, it := range items {
		s = s.Insert(it)
	}
	return s
}

// Insert appends v unless already present.
func (s StringSet) Insert(v string) StringSet {
	if slices.Contains(s, v) {
		return s
	}
	return append(s, v)
}

func (s StringSet) Contains(v string) bool { return slices.Contains(s, v) }

func (s StringSet) Items() []string { return []string(s) }

func (s StringSet) Len() int { return len(s) }

func (s *StringSet) DeserializeConfig(d *Decoder, v Value) bool {
	var items []string
	if !d.decodeStringList(v, &items) {
		return false
	}
	*s = NewStringSet(items...)
	return true
}
