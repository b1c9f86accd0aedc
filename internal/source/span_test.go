package source

import "testing"

func TestSpan(t *testing.T) {
	s := Span{File: 1, Start: 10, End: 20}
	if s.Len() != 10 || s.Empty() || !s.Contains(10) || s.Contains(20) {
		t.Fatalf("span %v: len=%d empty=%v", s, s.Len(), s.Empty())
	}
	if got := s.Join(Span{File: 1, Start: 2, End: 12}); got != (Span{File: 1, Start: 2, End: 20}) {
		t.Errorf("Join = %v", got)
	}
	if got := s.Join(Span{File: 2, Start: 0, End: 40}); got != s {
		t.Errorf("Join across files = %v", got)
	}
	if (Span{Start: 5, End: 5}).Len() != 0 || s.String() != "1:10-20" {
		t.Errorf("String = %s", s)
	}
}

func TestNameTableConcurrentIntern(t *testing.T) {
	names := NewNameTable()
	done := make(chan Name, 8)
	for range 8 {
		go func() { done <- names.Intern("linter") }()
	}
	first := <-done
	for range 7 {
		if n := <-done; n != first {
			t.Fatalf("intern returned different names: %d vs %d", n, first)
		}
	}
	if s := names.String(first); s != "linter" {
		t.Errorf("String = %q", s)
	}
	if names.Intern("") != 0 || names.Len() != 1 {
		t.Errorf("Len = %d, want 1", names.Len())
	}
	if names.String(Name(40)) != "" {
		t.Error("foreign name resolved")
	}
}
