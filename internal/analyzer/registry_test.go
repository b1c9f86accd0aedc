package analyzer

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"weblint/internal/diag"
)

func TestRegistryOrder(t *testing.T) {
	reg := testRegistry()
	var keys []string
	for i := range reg.Len() {
		m := reg.Metadata(i)
		keys = append(keys, m.Category.String()+"/"+m.Key())
	}
	want := []string{
		"lint/complexity/noImportant",
		"lint/correctness/noUndeclaredVariables",
		"lint/nursery/noFloating",
		"lint/nursery/noPanic",
		"lint/style/noShortNames",
		"lint/suspicious/noDebugger",
		"lint/suspicious/noDoubleEquals",
		"lint/suspicious/noFocusedTests",
		"assist/source/useSortedKeys",
	}
	if strings.Join(keys, ",") != strings.Join(want, ",") {
		t.Fatalf("order:\n got %v\nwant %v", keys, want)
	}
}

func TestRegistryPresets(t *testing.T) {
	reg := testRegistry()
	rec := reg.Recommended(CategoryLint)
	for _, key := range []string{"suspicious/noDebugger", "correctness/noUndeclaredVariables", "nursery/noFloating"} {
		if !rec.Has(mustIndex(t, reg, key)) {
			t.Errorf("%s should be recommended", key)
		}
	}
	if rec.Has(mustIndex(t, reg, "style/noShortNames")) {
		t.Errorf("noShortNames is not recommended")
	}
	if rec.Has(mustIndex(t, reg, "assist/source/useSortedKeys")) {
		t.Errorf("assist rules must not be in the lint preset")
	}
	if n := reg.Nursery().Len(); n != 2 {
		t.Errorf("nursery size = %d, want 2", n)
	}
	all, grec := reg.Group(CategoryLint, "suspicious")
	if all.Len() != 3 || grec.Len() != 3 {
		t.Errorf("suspicious: all=%d rec=%d", all.Len(), grec.Len())
	}
	dall, _ := reg.Domain(DomainTest)
	if !dall.Has(mustIndex(t, reg, "suspicious/noFocusedTests")) || dall.Len() != 1 {
		t.Errorf("test domain = %v", dall.Slice())
	}
}

func TestRegistryPresetsAreCopies(t *testing.T) {
	reg := testRegistry()
	rec := reg.Recommended(CategoryLint)
	rec.SubtractWith(reg.All(CategoryLint))
	if reg.Recommended(CategoryLint).Empty() {
		t.Fatal("mutating a returned preset changed the registry")
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate rule")
		}
	}()
	NewRegistry(testNoDebugger, testNoDebugger)
}

func TestRuleSelector(t *testing.T) {
	reg := testRegistry()
	cases := []struct {
		in    string
		count int
		err   string
	}{
		{in: "lint/suspicious/noDebugger", count: 1},
		{in: "suspicious/noDebugger", count: 1},
		{in: "suspicious", count: 3},
		{in: "assist/source", count: 1},
		{in: "suspicious/noDebuger", err: `did you mean "noDebugger"`},
		{in: "suspicous", err: `did you mean "suspicious"`},
		{in: "a/b/c/d", err: "invalid rule selector"},
		{in: "style/", err: "invalid rule selector"},
	}
	for _, c := range cases {
		sel, err := ParseRuleSelector(c.in)
		var set RuleSet
		if err == nil {
			set, err = sel.Resolve(reg)
		}
		if c.err != "" {
			if err == nil || !strings.Contains(err.Error(), c.err) {
				t.Errorf("%s: err = %v, want %q", c.in, err, c.err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: %v", c.in, err)
			continue
		}
		if set.Len() != c.count {
			t.Errorf("%s: %d rules, want %d", c.in, set.Len(), c.count)
		}
	}
}

func TestSelectorUnknownRuleIsSentinel(t *testing.T) {
	sel, err := ParseRuleSelector("style/nope")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sel.Resolve(testRegistry()); !errors.Is(err, ErrUnknownRule) {
		t.Fatalf("err = %v, want ErrUnknownRule", err)
	}
}

func TestRuleSetAlgebra(t *testing.T) {
	var a, b RuleSet
	a.Add(1)
	a.Add(70)
	b.Add(70)
	b.Add(3)
	u := a.Clone()
	u.UnionWith(b)
	if got := u.Slice(); len(got) != 3 || got[0] != 1 || got[1] != 3 || got[2] != 70 {
		t.Fatalf("union = %v", got)
	}
	i := a.Clone()
	i.IntersectWith(b)
	if got := i.Slice(); len(got) != 1 || got[0] != 70 {
		t.Fatalf("intersection = %v", got)
	}
	d := u.Clone()
	d.SubtractWith(b)
	var want RuleSet
	want.Add(1)
	if !d.Equal(want) {
		t.Fatalf("difference = %v", d.Slice())
	}
	if a.Has(200) {
		t.Fatal("Has past the end")
	}
}

func TestMetadataExport(t *testing.T) {
	reg := testRegistry()
	var buf bytes.Buffer
	if err := WriteMetadataJSON(&buf, reg); err != nil {
		t.Fatal(err)
	}
	var recs []MetadataRecord
	if err := json.Unmarshal(buf.Bytes(), &recs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(recs) != reg.Len() {
		t.Fatalf("%d records, want %d", len(recs), reg.Len())
	}
	var dbg *MetadataRecord
	for i := range recs {
		if recs[i].Name == "noDebugger" {
			dbg = &recs[i]
		}
	}
	if dbg == nil || dbg.FixKind != "safe" || dbg.Severity != "error" || len(dbg.Sources) != 1 {
		t.Fatalf("noDebugger record = %+v", dbg)
	}

	buf.Reset()
	if err := WriteMetadataTOML(&buf, reg); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(buf.String(), "[[rule]]"); n != reg.Len() {
		t.Fatalf("toml has %d rule tables:\n%s", n, buf.String())
	}
	if !strings.Contains(buf.String(), `domains = ["test"]`) {
		t.Fatalf("toml misses domains:\n%s", buf.String())
	}
}

func TestDefaultSeverity(t *testing.T) {
	tests := []struct {
		meta RuleMetadata
		want diag.Severity
	}{
		{RuleMetadata{Group: "correctness", Recommended: true}, diag.SevError},
		{RuleMetadata{Group: "correctness"}, diag.SevWarning},
		{RuleMetadata{Group: "style", Recommended: true}, diag.SevInfo},
		{RuleMetadata{Group: "source", Category: CategoryAssist}, diag.SevInfo},
		{RuleMetadata{Group: "correctness", Recommended: true, Severity: Sev(diag.SevWarning)}, diag.SevWarning},
		// hint is a real default, not "unset"
		{RuleMetadata{Group: "correctness", Recommended: true, Severity: Sev(diag.SevHint)}, diag.SevHint},
	}
	for _, tt := range tests {
		if got := tt.meta.DefaultSeverity(); got != tt.want {
			t.Errorf("%s (recommended=%v): DefaultSeverity() = %v, want %v", tt.meta.Group, tt.meta.Recommended, got, tt.want)
		}
	}
}
