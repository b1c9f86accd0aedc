package source

import "fmt"

// Span is a half-open byte range [Start, End) in one file of a FileSet.
type Span struct {
	File  FileID
	Start uint32
	End   uint32
}

func (s Span) String() string { return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End) }

func (s Span) Empty() bool { return s.Start >= s.End }

func (s Span) Len() uint32 {
	if s.Empty() {
		return 0
	}
	return s.End - s.Start
}

// Contains reports whether off lies inside the span.
func (s Span) Contains(off uint32) bool { return s.Start <= off && off < s.End }

// Join returns the smallest span covering both. Spans of different files
// do not join; s is returned unchanged.
func (s Span) Join(other Span) Span {
	if s.File != other.File {
		return s
	}
	return Span{File: s.File, Start: min(s.Start, other.Start), End: max(s.End, other.End)}
}
