package diagfmt

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"weblint/internal/diag"
	"weblint/internal/source"
)

type goldenLine struct {
	severity, category, path string
	pos                      source.LineCol
	msg                      string
}

func (l goldenLine) String() string {
	return fmt.Sprintf("%s %s %s:%d:%d %s", l.severity, l.category, l.path, l.pos.Line, l.pos.Col, l.msg)
}

// FormatGolden renders diagnostics one per line for snapshot tests:
// "<severity> <category> <path>:<line>:<col> <message>". Lines are sorted
// by location so parallel runs produce the same text. Notes become "note"
// lines when includeNotes is set; spans in unknown files are dropped.
func FormatGolden(diags []diag.Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil {
		return ""
	}
	base := fs.BaseDir()
	var lines []goldenLine
	add := func(sev string, cat diag.Category, span source.Span, msg string) {
		f := fs.Get(span.File)
		if f == nil {
			return
		}
		lines = append(lines, goldenLine{
			severity: sev,
			category: string(cat),
			path:     strings.TrimPrefix(f.DisplayPath("relative", base), "./"),
			pos:      f.Position(span.Start),
			msg:      strings.Join(strings.Fields(strings.ReplaceAll(msg, "\r", "\n")), " "),
		})
	}
	for i := range diags {
		d := &diags[i]
		add(d.Severity.String(), d.Category, d.Primary, d.Message)
		if includeNotes {
			for _, n := range d.Notes {
				add("note", d.Category, n.Span, n.Msg)
			}
		}
	}
	slices.SortStableFunc(lines, func(a, b goldenLine) int {
		return cmp.Or(
			cmp.Compare(a.path, b.path),
			cmp.Compare(a.pos.Line, b.pos.Line),
			cmp.Compare(a.pos.Col, b.pos.Col),
			cmp.Compare(a.severity, b.severity),
			cmp.Compare(a.category, b.category),
			cmp.Compare(a.msg, b.msg),
		)
	})
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.String()
	}
	return strings.Join(out, "\n")
}
