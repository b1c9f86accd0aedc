package trace

import "time"

// Kind says what an Event marks.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	KindHeartbeat
)

var (
	kindNames  = [...]string{KindSpanBegin: "begin", KindSpanEnd: "end", KindPoint: "point", KindHeartbeat: "heartbeat"}
	kindGlyphs = [...]string{KindSpanBegin: "→", KindSpanEnd: "←", KindPoint: "•", KindHeartbeat: "♡"}
)

func (k Kind) String() string { return lookup(kindNames[:], int(k)) }

// Scope is the granularity of an event; lower values are coarser.
type Scope uint8

const (
	// ScopeRun covers one CLI command.
	ScopeRun Scope = iota + 1
	// ScopeStage covers config loading, file collection, linting and reporting.
	ScopeStage
	// ScopeFile covers one file.
	ScopeFile
	// ScopePhase covers an analyzer phase or a fix iteration.
	ScopePhase
)

var scopeNames = [...]string{ScopeRun: "run", ScopeStage: "stage", ScopeFile: "file", ScopePhase: "phase"}

func (s Scope) String() string { return lookup(scopeNames[:], int(s)) }

// Event is one record handed to a Tracer. Seq is assigned by the sink
// that stores it.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 для корня
	GID      uint64
	Name     string // "lint", "file:src/a.js", "analyze/syntax"
	Detail   string
	Extra    map[string]string
}

// always marks events every sink keeps whatever its level.
func (ev *Event) always() bool { return ev.Kind == KindHeartbeat }

func lookup(names []string, i int) string {
	if i >= 0 && i < len(names) && names[i] != "" {
		return names[i]
	}
	return "unknown"
}
