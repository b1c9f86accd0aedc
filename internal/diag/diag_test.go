package diag

import (
	"testing"

	"weblint/internal/source"
)

func TestCategoryHasPrefix(t *testing.T) {
	c := LintCategory("correctness", "noFoo")
	cases := []struct {
		prefix Category
		want   bool
	}{
		{"lint/correctness/noFoo", true},
		{"lint/correctness", true},
		{"lint", true},
		{"lint/suspicious", false},
		{"lint/correct", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := c.HasPrefix(tc.prefix); got != tc.want {
			t.Errorf("%q.HasPrefix(%q) = %v, want %v", c, tc.prefix, got, tc.want)
		}
	}
	if c.Root() != "lint" {
		t.Errorf("Root = %q", c.Root())
	}
}

func TestBagLimit(t *testing.T) {
	b := NewBag(2)
	for i := range 4 {
		b.Add(NewError(CatParse, source.Span{Start: uint32(i)}, "x"))
	}
	if b.Len() != 2 || b.Dropped() != 2 || !b.Full() {
		t.Fatalf("len=%d dropped=%d full=%v", b.Len(), b.Dropped(), b.Full())
	}

	unlimited := NewBag(0)
	for range 1000 {
		if !unlimited.Add(New(SevInfo, CatParse, source.Span{}, "x")) {
			t.Fatal("unlimited bag rejected a diagnostic")
		}
	}
	if unlimited.HasErrors() {
		t.Errorf("info diagnostics must not count as errors")
	}
}

func TestBagSortAndDedup(t *testing.T) {
	b := NewBag(0)
	b.Add(NewWarning("b", source.Span{Start: 5, End: 6}, "w"))
	b.Add(NewError("a", source.Span{Start: 5, End: 6}, "e"))
	b.Add(NewError("a", source.Span{Start: 1, End: 2}, "e"))
	b.Add(NewError("a", source.Span{Start: 1, End: 2}, "e"))
	items := Unique(b.Items())
	SortDiagnostics(items)
	if len(items) != 3 {
		t.Fatalf("dedup left %d items", len(items))
	}
	if items[0].Primary.Start != 1 || items[1].Severity != SevError || items[2].Severity != SevWarning {
		t.Errorf("unexpected order: %+v", items)
	}
}

func TestTagsRoundTrip(t *testing.T) {
	tags := TagInternal | TagFixable
	names := tags.Names()
	if len(names) != 2 || names[0] != "internal" || names[1] != "fixable" {
		t.Fatalf("Names = %v", names)
	}
	if ParseTags(names) != tags {
		t.Errorf("ParseTags mismatch")
	}
}

func TestNewInternalCarriesBugAdvice(t *testing.T) {
	d := NewInternal(CatRuleError, source.Span{}, "boom", "correctness/noFoo", "let x")
	if !d.Tags.Has(TagInternal) {
		t.Fatal("missing internal tag")
	}
	if len(d.Advices) < 2 || d.Advices[0].Text != bugReportAdvice {
		t.Errorf("advices = %+v", d.Advices)
	}
}

func TestPendingEmitsOnce(t *testing.T) {
	bag := NewBag(0)
	p := ReportWarning(bag, CatConfigUnknownKey, source.Span{Start: 1, End: 2}, "Found an unknown key `lintr`.").
		WithAdvice(LogAdvice(LogInfo, "Did you mean `linter`?"))
	p.Emit()
	p.Emit()
	if bag.Len() != 1 || len(bag.Items()[0].Advices) != 1 {
		t.Fatalf("items = %+v", bag.Items())
	}
	ReportError(nil, CatConfigParse, source.Span{}, "dropped").Emit()
}

func TestTally(t *testing.T) {
	var tally Tally
	for _, sev := range []Severity{SevFatal, SevError, SevWarning, SevInfo, SevHint} {
		tally.Add(sev)
	}
	if tally != (Tally{Errors: 2, Warnings: 1, Infos: 2}) {
		t.Fatalf("tally = %+v", tally)
	}
}
