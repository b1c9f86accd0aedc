package diag

import (
	"weblint/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is a single finding. Rule is set for lint and assist
// diagnostics ("group/name"); Source names the tool a rule was ported from.
type Diagnostic struct {
	Category    Category
	Severity    Severity
	Primary     source.Span
	Message     string
	Description string
	Notes       []Note
	Advices     []Advice
	Tags        Tags
	Rule        string
	Source      string
}

// IsError reports Severity >= Error.
func (d *Diagnostic) IsError() bool { return d.Severity >= SevError }
