package config

import (
	"fmt"
	"strconv"
	"strings"

	"weblint/internal/source"
)

// Segment names are interned process-wide: provenance tables of every loaded
// project share them.
var segmentNames = source.NewNameTable()

type SegmentKind uint8

const (
	SegField SegmentKind = iota
	SegIndex
)

// Segment is one step of a field path: a named member or an array position.
type Segment struct {
	Kind  SegmentKind
	Name  source.Name
	Index int
}

func Field(name string) Segment {
	return Segment{Kind: SegField, Name: segmentNames.Intern(name)}
}

func Index(i int) Segment {
	return Segment{Kind: SegIndex, Index: i}
}

// FieldName returns the member name of a field segment.
func (s Segment) FieldName() string {
	if s.Kind != SegField {
		return ""
	}
	return segmentNames.String(s.Name)
}

// Query is a path from the configuration root to a value.
type Query []Segment

// Field returns a copy of q extended by a member step.
func (q Query) Field(name string) Query {
	out := make(Query, len(q), len(q)+1)
	copy(out, q)
	return append(out, Field(name))
}

// Index returns a copy of q extended by an array step.
func (q Query) Index(i int) Query {
	out := make(Query, len(q), len(q)+1)
	copy(out, q)
	return append(out, Index(i))
}

// Equal compares segment by segment.
func (q Query) Equal(o Query) bool {
	if len(q) != len(o) {
		return false
	}
	for i := range q {
		if q[i] != o[i] {
			return false
		}
	}
	return true
}

func (q Query) HasPrefix(p Query) bool {
	return len(p) <= len(q) && q[:len(p)].Equal(p)
}

// TrimPrefix drops p from the front of q; q is returned unchanged when p is
// not a prefix.
func (q Query) TrimPrefix(p Query) Query {
	if !q.HasPrefix(p) {
		return q
	}
	out := make(Query, len(q)-len(p))
	copy(out, q[len(p):])
	return out
}

// Contains reports whether any field segment is named name.
func (q Query) Contains(name string) bool {
	for _, s := range q {
		if s.Kind == SegField && s.FieldName() == name {
			return true
		}
	}
	return false
}

// String renders the canonical form: fields joined by '.', indexes as [n].
func (q Query) String() string {
	var b strings.Builder
	for i, s := range q {
		switch s.Kind {
		case SegField:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(s.FieldName())
		case SegIndex:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(s.Index))
			b.WriteByte(']')
		}
	}
	return b.String()
}

// QueryError reports a malformed query string.
type QueryError struct {
	Query    string
	Position int
	Message  string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("provenance/queryParse: %s (at %d in %q)", e.Message, e.Position, e.Query)
}

func isFieldStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isFieldChar(c byte) bool {
	return isFieldStart(c) || (c >= '0' && c <= '9')
}

// ParseQuery parses "formatter.indentWidth" or
// "overrides[0].linter.rules.correctness" into segments.
func ParseQuery(s string) (Query, error) {
	fail := func(pos int, format string, args ...any) (Query, error) {
		return nil, &QueryError{Query: s, Position: pos, Message: fmt.Sprintf(format, args...)}
	}
	if s == "" {
		return fail(0, "Query cannot be empty")
	}
	if s[0] == '.' {
		return fail(0, "Query cannot start with '.'")
	}

	var q Query
	i := 0
	// expectField: начало запроса или после точки.
	expectField := true
	for i < len(s) {
		c := s[i]
		switch {
		case expectField:
			if c == '.' {
				return fail(i, "Empty field name (double dot)")
			}
			if c == ']' {
				return fail(i, "Unexpected ']' without '['")
			}
			if !isFieldStart(c) {
				return fail(i, "Unexpected character '%c'", c)
			}
			start := i
			for i < len(s) && isFieldChar(s[i]) {
				i++
			}
			q = append(q, Field(s[start:i]))
			expectField = false
			if i < len(s) && s[i] != '.' && s[i] != '[' {
				if s[i] == ']' {
					return fail(i, "Unexpected ']' without '['")
				}
				return fail(i, "Expected '.' or '[' after field name, found '%c'", s[i])
			}
		case c == '.':
			i++
			if i == len(s) {
				return fail(i, "Empty field name (double dot)")
			}
			expectField = true
		case c == '[':
			start := i
			i++
			digits := i
			for i < len(s) && s[i] != ']' {
				if s[i] < '0' || s[i] > '9' {
					return fail(i, "Invalid character '%c' in array index", s[i])
				}
				i++
			}
			if i == len(s) {
				return fail(start, "Unclosed array index bracket")
			}
			if i == digits {
				return fail(start, "Empty array index")
			}
			n, err := strconv.Atoi(s[digits:i])
			if err != nil {
				return fail(digits, "Array index '%s' is too large", s[digits:i])
			}
			q = append(q, Index(n))
			i++
			if i < len(s) && s[i] != '.' && s[i] != '[' {
				if s[i] == ']' {
					return fail(i, "Unexpected ']' without '['")
				}
				return fail(i, "Expected '.' or '[' after array index, found '%c'", s[i])
			}
		case c == ']':
			return fail(i, "Unexpected ']' without '['")
		default:
			return fail(i, "Unexpected character '%c'", c)
		}
	}
	return q, nil
}

// MustParseQuery panics on malformed input; meant for literals.
func MustParseQuery(s string) Query {
	q, err := ParseQuery(s)
	if err != nil {
		panic(err)
	}
	return q
}
