package diagfmt

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"weblint/internal/source"
)

// frameLine is one source line of a code frame; Mark covers [From, To)
// in byte columns of Text.
type frameLine struct {
	Number   uint32
	Text     string
	From, To int
	Marked   bool
}

// buildFrame collects the lines of span plus context lines around it.
func buildFrame(fs *source.FileSet, span source.Span, context int) ([]frameLine, error) {
	if fs == nil {
		return nil, fmt.Errorf("nil FileSet")
	}
	file := fs.Get(span.File)
	if file == nil {
		return nil, fmt.Errorf("file %d not found in FileSet", span.File)
	}
	start, end := fs.Resolve(span)
	if end.Line < start.Line {
		end = start
	}
	total := file.LineCount()
	ctx, err := safecast.Conv[uint32](max(context, 0))
	if err != nil {
		return nil, err
	}
	first := max(start.Line, 1)
	if first > ctx {
		first -= ctx
	} else {
		first = 1
	}
	last := min(end.Line+ctx, total)

	var out []frameLine
	for n := first; n <= last; n++ {
		text := strings.TrimRight(file.Line(n), "\r")
		fl := frameLine{Number: n, Text: text}
		if n >= start.Line && n <= end.Line {
			fl.Marked = true
			fl.From, fl.To = 0, len(text)
			if n == start.Line {
				fl.From = min(int(start.Col)-1, len(text))
			}
			if n == end.Line {
				fl.To = min(int(end.Col)-1, len(text))
			}
			if fl.To <= fl.From {
				// пустой span: одна каретка
				fl.To = fl.From + 1
			}
		}
		out = append(out, fl)
	}
	return out, nil
}

// expandTabs keeps caret columns aligned with the rendered line.
func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}

func caretPadding(text string, from int) string {
	from = min(from, len(text))
	return strings.Repeat(" ", displayWidth(expandTabs(text[:from])))
}
