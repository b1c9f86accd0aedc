package diagfmt

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/sergi/go-diff/diffmatchpatch"

	"weblint/internal/diag"
	"weblint/internal/source"
)

type palette struct {
	err, warn, info, hint *color.Color
	dim, bold, added, del *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:   color.New(color.FgRed, color.Bold),
		warn:  color.New(color.FgYellow, color.Bold),
		info:  color.New(color.FgCyan),
		hint:  color.New(color.FgGreen),
		dim:   color.New(color.Faint),
		bold:  color.New(color.Bold),
		added: color.New(color.FgGreen),
		del:   color.New(color.FgRed),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.hint, p.dim, p.bold, p.added, p.del} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch {
	case s >= diag.SevError:
		return p.err
	case s == diag.SevWarning:
		return p.warn
	case s == diag.SevInfo:
		return p.info
	}
	return p.hint
}

func severitySymbol(s diag.Severity) string {
	switch {
	case s >= diag.SevError:
		return "✖"
	case s == diag.SevWarning:
		return "!"
	case s == diag.SevInfo:
		return "i"
	}
	return "?"
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Для каждой печатает заголовок <path>:<line>:<col> <category>, сообщение
// с символом severity, фрагмент кода с подчёркиванием ^^^ по Span,
// затем Notes и Advices.
// Диагностики печатаются в переданном порядке.
func Pretty(w io.Writer, diags []diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) error {
	bw := bufio.NewWriter(w)
	pal := newPalette(opts.Color)
	for i := range diags {
		d := &diags[i]
		if d.Tags.Has(diag.TagVerbose) && !opts.Verbose {
			continue
		}
		prettyOne(bw, d, fs, opts, pal)
	}
	return bw.Flush()
}

func prettyOne(w *bufio.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, pal palette) {
	loc := location(fs, d.Primary, opts.PathMode, opts.BaseDir)
	header := d.Category.String()
	if loc != "" {
		header = loc + " " + header
	}
	fmt.Fprint(w, pal.bold.Sprint(header))
	var labels []string
	if d.Tags.Has(diag.TagFixable) {
		labels = append(labels, "FIXABLE")
	}
	if d.Tags.Has(diag.TagDeprecated) {
		labels = append(labels, "DEPRECATED")
	}
	for _, l := range labels {
		fmt.Fprint(w, "  ", pal.dim.Sprint(l))
	}
	fmt.Fprintf(w, " %s\n\n", pal.dim.Sprint(strings.Repeat("━", 10)))

	sev := pal.severity(d.Severity)
	fmt.Fprintf(w, "  %s %s\n", sev.Sprint(severitySymbol(d.Severity)), sev.Sprint(d.Message))
	if d.Source != "" {
		fmt.Fprintf(w, "  %s\n", pal.dim.Sprintf("Source: %s", d.Source))
	}
	w.WriteByte('\n')

	if fs != nil && fs.Get(d.Primary.File) != nil {
		writeFrame(w, fs, d.Primary, int(opts.Context), sev, pal)
	}
	if opts.ShowNotes {
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s %s\n", pal.info.Sprint("i"), n.Msg)
			if fs != nil && fs.Get(n.Span.File) != nil {
				w.WriteByte('\n')
				writeFrame(w, fs, n.Span, 0, pal.info, pal)
			}
		}
	}
	if opts.ShowAdvices {
		for _, a := range d.Advices {
			writeAdvice(w, a, fs, pal)
		}
	}
	w.WriteByte('\n')
}

func writeFrame(w *bufio.Writer, fs *source.FileSet, span source.Span, context int, mark *color.Color, pal palette) {
	lines, err := buildFrame(fs, span, context)
	if err != nil || len(lines) == 0 {
		return
	}
	width := len(fmt.Sprint(lines[len(lines)-1].Number))
	for _, l := range lines {
		prefix := "  "
		if l.Marked {
			prefix = mark.Sprint("> ")
		}
		fmt.Fprintf(w, "  %s%s %s %s\n", prefix, pal.dim.Sprintf("%*d", width, l.Number), pal.dim.Sprint("│"), expandTabs(l.Text))
		if l.Marked {
			carets := max(displayWidth(expandTabs(safeSlice(l.Text, l.From, l.To))), 1)
			fmt.Fprintf(w, "    %s %s %s%s\n", strings.Repeat(" ", width), pal.dim.Sprint("│"),
				caretPadding(l.Text, l.From), mark.Sprint(strings.Repeat("^", carets)))
		}
	}
	w.WriteByte('\n')
}

func writeAdvice(w *bufio.Writer, a diag.Advice, fs *source.FileSet, pal palette) {
	switch a.Kind {
	case diag.AdviceLog:
		sym, c := "i", pal.info
		switch a.Level {
		case diag.LogWarn:
			sym, c = "!", pal.warn
		case diag.LogError:
			sym, c = "✖", pal.err
		case diag.LogNone:
			sym = " "
		}
		fmt.Fprintf(w, "  %s %s\n\n", c.Sprint(sym), a.Text)
	case diag.AdviceList:
		if a.Text != "" {
			fmt.Fprintf(w, "  %s %s\n\n", pal.info.Sprint("i"), a.Text)
		}
		for _, item := range a.Items {
			fmt.Fprintf(w, "  - %s\n", item)
		}
		w.WriteByte('\n')
	case diag.AdviceCommand:
		fmt.Fprintf(w, "  %s %s\n\n", pal.dim.Sprint("$"), pal.bold.Sprint(a.Text))
	case diag.AdviceCode:
		if fs != nil && fs.Get(a.Span.File) != nil {
			writeFrame(w, fs, a.Span, 0, pal.info, pal)
		}
	case diag.AdviceDiff:
		writeDiff(w, a.Before, a.After, pal)
	}
}

// writeDiff prints a line diff with -/+ markers; unchanged lines keep two
// spaces of indentation.
func writeDiff(w *bufio.Writer, before, after string, pal palette) {
	for _, l := range diffLines(before, after) {
		switch l.op {
		case diffmatchpatch.DiffDelete:
			fmt.Fprintf(w, "  %s\n", pal.del.Sprint("- "+l.text))
		case diffmatchpatch.DiffInsert:
			fmt.Fprintf(w, "  %s\n", pal.added.Sprint("+ "+l.text))
		default:
			fmt.Fprintf(w, "    %s\n", l.text)
		}
	}
	w.WriteByte('\n')
}

type diffLine struct {
	op   diffmatchpatch.Operation
	text string
}

func diffLines(before, after string) []diffLine {
	dmp := diffmatchpatch.New()
	a, b, table := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), table)
	var out []diffLine
	for _, d := range diffs {
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out = append(out, diffLine{op: d.Type, text: strings.TrimSuffix(line, "\n")})
		}
	}
	return out
}

// location renders "path:line:col" for span, or "" when the file is unknown.
func location(fs *source.FileSet, span source.Span, mode PathMode, baseDir string) string {
	if fs == nil {
		return ""
	}
	f := fs.Get(span.File)
	if f == nil {
		return ""
	}
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", displayPath(f, fs, mode, baseDir), start.Line, start.Col)
}

func displayPath(f *source.File, fs *source.FileSet, mode PathMode, baseDir string) string {
	if baseDir == "" {
		baseDir = fs.BaseDir()
	}
	if mode == "" {
		mode = PathModeAuto
	}
	return f.DisplayPath(string(mode), baseDir)
}

func displayWidth(s string) int { return runewidth.StringWidth(s) }

func safeSlice(s string, from, to int) string {
	from = max(0, min(from, len(s)))
	to = max(from, min(to, len(s)))
	return s[from:to]
}

// Short prints one line per diagnostic:
// <path>:<line>:<col>: <severity> <category>: <message>
func Short(w io.Writer, diags []diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) error {
	bw := bufio.NewWriter(w)
	pal := newPalette(opts.Color)
	for i := range diags {
		d := &diags[i]
		if d.Tags.Has(diag.TagVerbose) && !opts.Verbose {
			continue
		}
		if loc := location(fs, d.Primary, opts.PathMode, opts.BaseDir); loc != "" {
			fmt.Fprintf(bw, "%s: ", loc)
		}
		fmt.Fprintf(bw, "%s %s: %s\n", pal.severity(d.Severity).Sprint(d.Severity.String()), d.Category, d.Message)
	}
	return bw.Flush()
}
