package diag

import "weblint/internal/source"

const bugReportAdvice = "This diagnostic was derived from an internal error. Potential bug, please report it if necessary."

func New(sev Severity, cat Category, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Category: cat,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(cat Category, primary source.Span, msg string) Diagnostic {
	return New(SevError, cat, primary, msg)
}

func NewWarning(cat Category, primary source.Span, msg string) Diagnostic {
	return New(SevWarning, cat, primary, msg)
}

// NewInternal builds a diagnostic for an engine failure. It always carries
// TagInternal and the advice to file a bug report with rule and excerpt.
func NewInternal(cat Category, primary source.Span, msg, rule, excerpt string) Diagnostic {
	d := New(SevError, cat, primary, msg)
	d.Tags |= TagInternal
	d.Rule = rule
	d.Advices = append(d.Advices, LogAdvice(LogWarn, bugReportAdvice))
	if rule != "" {
		d.Advices = append(d.Advices, LogAdvice(LogInfo, "Rule: "+rule))
	}
	if excerpt != "" {
		d.Advices = append(d.Advices, Advice{Kind: AdviceCode, Span: primary, Text: excerpt})
	}
	return d
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

func (d Diagnostic) WithAdvice(a ...Advice) Diagnostic {
	d.Advices = append(d.Advices, a...)
	return d
}

func (d Diagnostic) WithTags(t Tags) Diagnostic {
	d.Tags |= t
	return d
}

func (d Diagnostic) WithDescription(desc string) Diagnostic {
	d.Description = desc
	return d
}
