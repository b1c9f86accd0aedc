package diag

import "weblint/internal/source"

// Reporter receives diagnostics while a configuration document is decoded.
type Reporter interface {
	Report(d Diagnostic)
}

// Pending is a diagnostic under construction; Emit hands it over once.
type Pending struct {
	to   Reporter
	d    Diagnostic
	sent bool
}

func ReportError(r Reporter, cat Category, at source.Span, msg string) *Pending {
	return &Pending{to: r, d: NewError(cat, at, msg)}
}

func ReportWarning(r Reporter, cat Category, at source.Span, msg string) *Pending {
	return &Pending{to: r, d: NewWarning(cat, at, msg)}
}

func (p *Pending) WithAdvice(a ...Advice) *Pending {
	p.d = p.d.WithAdvice(a...)
	return p
}

func (p *Pending) WithNote(at source.Span, msg string) *Pending {
	p.d = p.d.WithNote(at, msg)
	return p
}

func (p *Pending) Emit() {
	if p.sent || p.to == nil {
		return
	}
	p.sent = true
	p.to.Report(p.d)
}
