package diag

import (
	"cmp"
	"slices"
)

// Bag collects diagnostics and is the usual Reporter. A positive limit
// caps how many are kept; the rest are only counted.
type Bag struct {
	items   []Diagnostic
	limit   int
	dropped int
}

func NewBag(limit int) *Bag { return &Bag{limit: max(limit, 0)} }

func (b *Bag) Report(d Diagnostic) { b.Add(d) }

// Add returns false when the limit rejected d.
func (b *Bag) Add(d Diagnostic) bool {
	if b.Full() {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Full() bool   { return b.limit > 0 && len(b.items) >= b.limit }
func (b *Bag) Len() int     { return len(b.items) }
func (b *Bag) Dropped() int { return b.dropped }

func (b *Bag) HasErrors() bool {
	return slices.ContainsFunc(b.items, func(d Diagnostic) bool { return d.Severity >= SevError })
}

// Items shares the bag's backing array.
func (b *Bag) Items() []Diagnostic { return b.items }

func (b *Bag) Sort() { SortDiagnostics(b.items) }

// Tally counts diagnostics the way the run summary reports them: fatal
// counts as an error, hint as info.
type Tally struct {
	Errors, Warnings, Infos int
}

func (t *Tally) Add(sev Severity) {
	switch {
	case sev >= SevError:
		t.Errors++
	case sev == SevWarning:
		t.Warnings++
	default:
		t.Infos++
	}
}

// SortDiagnostics orders by file and span, more severe first within a span.
func SortDiagnostics(items []Diagnostic) {
	slices.SortStableFunc(items, func(a, b Diagnostic) int {
		return cmp.Or(
			cmp.Compare(a.Primary.File, b.Primary.File),
			cmp.Compare(a.Primary.Start, b.Primary.Start),
			cmp.Compare(a.Primary.End, b.Primary.End),
			cmp.Compare(b.Severity, a.Severity),
			cmp.Compare(a.Category, b.Category),
		)
	})
}

type dedupKey struct {
	cat  Category
	sev  Severity
	span [3]uint32
	msg  string
}

// Unique drops repeats of a category, severity, span and message, keeping
// the first. It filters in place.
func Unique(items []Diagnostic) []Diagnostic {
	seen := make(map[dedupKey]struct{}, len(items))
	out := items[:0]
	for _, d := range items {
		key := dedupKey{d.Category, d.Severity, [3]uint32{uint32(d.Primary.File), d.Primary.Start, d.Primary.End}, d.Message}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, d)
	}
	return out
}
