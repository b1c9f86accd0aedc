package diagfmt

import (
	"encoding/json"
	"io"

	"weblint/internal/diag"
	"weblint/internal/source"
)

// SpanJSON is a byte range in the file.
type SpanJSON struct {
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

// PositionJSON is a 1-based line/column pair.
type PositionJSON struct {
	Line   uint32 `json:"line"`
	Column uint32 `json:"column"`
}

// LocationJSON представляет местоположение в файле для JSON
type LocationJSON struct {
	Path       string        `json:"path,omitempty"`
	Span       *SpanJSON     `json:"span,omitempty"`
	Start      *PositionJSON `json:"start,omitempty"`
	End        *PositionJSON `json:"end,omitempty"`
	SourceCode string        `json:"sourceCode,omitempty"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// AdviceJSON is one advice entry; only the fields of its kind are set.
type AdviceJSON struct {
	Kind     string        `json:"kind"`
	Level    string        `json:"level,omitempty"`
	Text     string        `json:"text,omitempty"`
	Location *LocationJSON `json:"location,omitempty"`
	Before   string        `json:"before,omitempty"`
	After    string        `json:"after,omitempty"`
	Items    []string      `json:"items,omitempty"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Category    string       `json:"category"`
	Severity    string       `json:"severity"`
	Message     string       `json:"message"`
	Description string       `json:"description,omitempty"`
	Location    LocationJSON `json:"location"`
	Source      string       `json:"source,omitempty"`
	Tags        []string     `json:"tags"`
	TagBits     uint8        `json:"tagBits"`
	Notes       []NoteJSON   `json:"notes,omitempty"`
	Advices     []AdviceJSON `json:"advices"`
}

// SummaryJSON counts diagnostics per severity.
type SummaryJSON struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
	Hints    int `json:"hints"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Summary     SummaryJSON      `json:"summary"`
	Count       int              `json:"count"`
	Truncated   int              `json:"truncated,omitempty"`
}

// makeLocation создаёт LocationJSON из Span
func makeLocation(span source.Span, fs *source.FileSet, opts JSONOpts) LocationJSON {
	if fs == nil {
		return LocationJSON{}
	}
	f := fs.Get(span.File)
	if f == nil {
		return LocationJSON{}
	}
	loc := LocationJSON{
		Path: displayPath(f, fs, opts.PathMode, opts.BaseDir),
		Span: &SpanJSON{Start: span.Start, End: span.End},
	}
	if opts.IncludePositions {
		startPos, endPos := fs.Resolve(span)
		loc.Start = &PositionJSON{Line: startPos.Line, Column: startPos.Col}
		loc.End = &PositionJSON{Line: endPos.Line, Column: endPos.Col}
	}
	if opts.IncludeSource {
		loc.SourceCode = string(f.Content)
	}
	return loc
}

func logLevelName(l diag.LogLevel) string {
	switch l {
	case diag.LogInfo:
		return "info"
	case diag.LogWarn:
		return "warn"
	case diag.LogError:
		return "error"
	}
	return "none"
}

func makeAdvice(a diag.Advice, fs *source.FileSet, opts JSONOpts) AdviceJSON {
	out := AdviceJSON{Kind: a.Kind.String()}
	switch a.Kind {
	case diag.AdviceLog:
		out.Level = logLevelName(a.Level)
		out.Text = a.Text
	case diag.AdviceCode:
		loc := makeLocation(a.Span, fs, JSONOpts{PathMode: opts.PathMode, BaseDir: opts.BaseDir, IncludePositions: opts.IncludePositions})
		out.Location = &loc
	case diag.AdviceDiff:
		out.Before, out.After = a.Before, a.After
	case diag.AdviceList:
		out.Text = a.Text
		out.Items = append([]string{}, a.Items...)
	case diag.AdviceCommand:
		out.Text = a.Text
	}
	return out
}

// MakeDiagnostic converts one diagnostic into its wire form.
func MakeDiagnostic(d *diag.Diagnostic, fs *source.FileSet, opts JSONOpts) DiagnosticJSON {
	out := DiagnosticJSON{
		Category:    d.Category.String(),
		Severity:    d.Severity.String(),
		Message:     d.Message,
		Description: d.Description,
		Location:    makeLocation(d.Primary, fs, opts),
		Source:      d.Source,
		Tags:        d.Tags.Names(),
		TagBits:     uint8(d.Tags),
		Advices:     make([]AdviceJSON, 0, len(d.Advices)),
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	noteOpts := opts
	noteOpts.IncludeSource = false
	for _, n := range d.Notes {
		out.Notes = append(out.Notes, NoteJSON{Message: n.Msg, Location: makeLocation(n.Span, fs, noteOpts)})
	}
	for _, a := range d.Advices {
		out.Advices = append(out.Advices, makeAdvice(a, fs, opts))
	}
	return out
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
// Summary считается по всем диагностикам, даже если вывод обрезан Max.
func BuildDiagnosticsOutput(diags []diag.Diagnostic, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	limit := len(diags)
	if opts.Max > 0 && opts.Max < limit {
		limit = opts.Max
	}
	out := DiagnosticsOutput{Diagnostics: make([]DiagnosticJSON, 0, limit)}
	for i := range diags {
		d := &diags[i]
		switch {
		case d.Severity >= diag.SevError:
			out.Summary.Errors++
		case d.Severity == diag.SevWarning:
			out.Summary.Warnings++
		case d.Severity == diag.SevInfo:
			out.Summary.Infos++
		default:
			out.Summary.Hints++
		}
		if i < limit {
			out.Diagnostics = append(out.Diagnostics, MakeDiagnostic(d, fs, opts))
		}
	}
	out.Count = len(out.Diagnostics)
	out.Truncated = len(diags) - limit
	return out
}

// JSON форматирует диагностики в JSON формат.
func JSON(w io.Writer, diags []diag.Diagnostic, fs *source.FileSet, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	if opts.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(BuildDiagnosticsOutput(diags, fs, opts))
}
