package trace

import (
	"fmt"
	"slices"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // nothing streamed, the ring is dumped on failure
	LevelPhase        // run and stage boundaries
	LevelDetail       // plus per-file spans
	LevelDebug        // plus analyzer phases
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

// finest is the deepest scope a level streams.
var finest = [...]Scope{LevelPhase: ScopeStage, LevelDetail: ScopeFile, LevelDebug: ScopePhase}

func (l Level) String() string { return lookup(levelNames[:], int(l)) }

func ParseLevel(s string) (Level, error) {
	return parseName[Level]("trace level", levelNames[:], s)
}

// ShouldEmit reports whether a stream at this level writes events of scope.
func (l Level) ShouldEmit(scope Scope) bool {
	return int(l) < len(finest) && scope != 0 && scope <= finest[l]
}

// Records reports whether events of scope are produced at all. At
// LevelError they are kept for the ring down to file spans.
func (l Level) Records(scope Scope) bool {
	if l == LevelError {
		return scope != 0 && scope <= ScopeFile
	}
	return l.ShouldEmit(scope)
}

func parseName[T ~uint8](what string, names []string, s string) (T, error) {
	i := slices.IndexFunc(names, func(n string) bool { return strings.EqualFold(n, s) })
	if i < 0 {
		return 0, fmt.Errorf("unknown %s %q, want one of %s", what, s, strings.Join(names, ", "))
	}
	return T(i), nil
}
