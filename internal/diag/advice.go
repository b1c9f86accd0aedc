package diag

import "weblint/internal/source"

// AdviceKind selects how an Advice is rendered.
type AdviceKind uint8

const (
	AdviceLog AdviceKind = iota
	AdviceCode
	AdviceDiff
	AdviceList
	AdviceCommand
)

func (k AdviceKind) String() string {
	switch k {
	case AdviceLog:
		return "log"
	case AdviceCode:
		return "code"
	case AdviceDiff:
		return "diff"
	case AdviceList:
		return "list"
	case AdviceCommand:
		return "command"
	}
	return "unknown"
}

// LogLevel of a log advice.
type LogLevel uint8

const (
	LogNone LogLevel = iota
	LogInfo
	LogWarn
	LogError
)

// Advice is an additional piece of information attached to a diagnostic.
// Only the fields relevant to Kind are set.
type Advice struct {
	Kind   AdviceKind
	Level  LogLevel
	Text   string
	Span   source.Span
	Before string
	After  string
	Items  []string
}

func LogAdvice(level LogLevel, text string) Advice {
	return Advice{Kind: AdviceLog, Level: level, Text: text}
}

func CodeAdvice(span source.Span) Advice {
	return Advice{Kind: AdviceCode, Span: span}
}

func DiffAdvice(before, after string) Advice {
	return Advice{Kind: AdviceDiff, Before: before, After: after}
}

func ListAdvice(title string, items []string) Advice {
	return Advice{Kind: AdviceList, Text: title, Items: items}
}

func CommandAdvice(cmd string) Advice {
	return Advice{Kind: AdviceCommand, Text: cmd}
}
