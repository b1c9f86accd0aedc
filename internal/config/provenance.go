package config

import (
	"fmt"
	"slices"
	"sort"

	"weblint/internal/source"
)

type SourceKind uint8

const (
	SourceBaseConfig SourceKind = iota
	SourceOverride
	SourceCli
	SourceExtend
)

func (k SourceKind) String() string {
	switch k {
	case SourceBaseConfig:
		return "base"
	case SourceOverride:
		return "override"
	case SourceCli:
		return "cli"
	case SourceExtend:
		return "extend"
	}
	return "unknown"
}

// Source names the configuration layer a value came from. Path is set for
// base and extended files, Index for override entries.
type Source struct {
	Kind  SourceKind
	Path  string
	Index int
}

func BaseSource(path string) Source   { return Source{Kind: SourceBaseConfig, Path: path} }
func ExtendSource(path string) Source { return Source{Kind: SourceExtend, Path: path} }
func OverrideSource(i int) Source     { return Source{Kind: SourceOverride, Index: i} }
func CliSource() Source               { return Source{Kind: SourceCli} }

func (s Source) String() string {
	switch s.Kind {
	case SourceBaseConfig, SourceExtend:
		return fmt.Sprintf("%s(%s)", s.Kind, s.Path)
	case SourceOverride:
		return fmt.Sprintf("override[%d]", s.Index)
	}
	return s.Kind.String()
}

// Pointer locates a member inside its JSON document. Key keeps the original
// spelling; KeyRange is empty for array elements and the document root.
type Pointer struct {
	Key      string
	KeyRange source.Span
}

// ProvenanceEntry records where one configuration value was written.
type ProvenanceEntry struct {
	Source     Source
	MergeOrder int
	Pointer    Pointer
	Range      source.Span
	Query      Query
}

// Provenance is the side table from canonical query strings to entries.
// A table is built by one goroutine and read-only afterwards.
type Provenance struct {
	entries []ProvenanceEntry
	byKey   map[string][]int
}

func NewProvenance() *Provenance {
	return &Provenance{byKey: make(map[string][]int)}
}

func (p *Provenance) Len() int {
	if p == nil {
		return 0
	}
	return len(p.entries)
}

// Entries returns every entry in insertion order.
func (p *Provenance) Entries() []ProvenanceEntry {
	if p == nil {
		return nil
	}
	return p.entries
}

func (p *Provenance) Add(e ProvenanceEntry) {
	key := e.Query.String()
	p.byKey[key] = append(p.byKey[key], len(p.entries))
	p.entries = append(p.entries, e)
}

// MaxMergeOrder returns the highest merge order in the table, -1 when empty.
func (p *Provenance) MaxMergeOrder() int {
	m := -1
	for _, e := range p.Entries() {
		m = max(m, e.MergeOrder)
	}
	return m
}

// Append copies other's entries, stamping them with order.
func (p *Provenance) Append(other *Provenance, order int) {
	for _, e := range other.Entries() {
		e.MergeOrder = order
		p.Add(e)
	}
}

// AppendRebased copies the entries of other that lie under prefix and carry
// merge order from (any order when from < 0), strips the prefix and
// re-attributes them to src with the given merge order. Override sections
// are recorded as "overrides[i].x" while parsing and rebased to "x" when
// they apply to a path.
func (p *Provenance) AppendRebased(other *Provenance, prefix Query, from int, src Source, order int) {
	for _, e := range other.Entries() {
		if len(e.Query) <= len(prefix) || !e.Query.HasPrefix(prefix) {
			continue
		}
		if from >= 0 && e.MergeOrder != from {
			continue
		}
		e.Query = e.Query.TrimPrefix(prefix)
		if e.Query[0].FieldName() == "includes" {
			continue
		}
		e.Source = src
		e.MergeOrder = order
		p.Add(e)
	}
}

// Clone returns an independent copy.
func (p *Provenance) Clone() *Provenance {
	out := NewProvenance()
	for _, e := range p.Entries() {
		out.Add(e)
	}
	return out
}

// Lookup returns the entry that decided the value at q: the highest merge
// order wins, later positions break ties inside one layer.
func (p *Provenance) Lookup(q Query) (ProvenanceEntry, bool) {
	if p == nil {
		return ProvenanceEntry{}, false
	}
	idx := p.byKey[q.String()]
	best := -1
	for _, i := range idx {
		e := &p.entries[i]
		if !e.Query.Equal(q) {
			continue
		}
		if best < 0 || winsOver(e, &p.entries[best]) {
			best = i
		}
	}
	if best < 0 {
		return ProvenanceEntry{}, false
	}
	return p.entries[best], true
}

func winsOver(a, b *ProvenanceEntry) bool {
	if a.MergeOrder != b.MergeOrder {
		return a.MergeOrder > b.MergeOrder
	}
	return a.Range.Start > b.Range.Start
}

// Query parses s and looks it up.
func (p *Provenance) Query(s string) (ProvenanceEntry, bool, error) {
	q, err := ParseQuery(s)
	if err != nil {
		return ProvenanceEntry{}, false, err
	}
	e, ok := p.Lookup(q)
	return e, ok, nil
}

// Under returns the entries at or below prefix sorted by merge order.
func (p *Provenance) Under(prefix Query) []ProvenanceEntry {
	var out []ProvenanceEntry
	for _, e := range p.Entries() {
		if e.Query.HasPrefix(prefix) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MergeOrder < out[j].MergeOrder })
	return out
}

// Latest returns the winning entry at or below prefix.
func (p *Provenance) Latest(prefix Query) (ProvenanceEntry, bool) {
	under := p.Under(prefix)
	if len(under) == 0 {
		return ProvenanceEntry{}, false
	}
	best := 0
	for i := range under {
		if winsOver(&under[i], &under[best]) {
			best = i
		}
	}
	return under[best], true
}

// DropUnder removes the entries at or below prefix. Used when a validator
// rejects a node and its values fall back to defaults.
func (p *Provenance) DropUnder(prefix Query) {
	kept := slices.DeleteFunc(slices.Clone(p.entries), func(e ProvenanceEntry) bool {
		return e.Query.HasPrefix(prefix)
	})
	p.entries = p.entries[:0]
	p.byKey = make(map[string][]int)
	for _, e := range kept {
		p.Add(e)
	}
}

func (p *Provenance) latestRange(q Query) source.Span {
	if e, ok := p.Latest(q); ok {
		return e.Range
	}
	return source.Span{}
}
