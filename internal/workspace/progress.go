package workspace

import "time"

// Phase is where a file is in the pipeline. The last four are final.
type Phase uint8

const (
	PhaseQueued Phase = iota
	PhaseReading
	PhaseParsing
	PhaseAnalyzing
	PhaseFixing
	PhaseDone
	// PhaseCached marks a file answered from the result cache.
	PhaseCached
	PhaseFailed
	// PhaseSkipped is unused by LintAll; the UI shows it for files dropped
	// by a cancelled run.
	PhaseSkipped
)

var phaseNames = [...]string{"queued", "reading", "parsing", "analyzing", "fixing", "done", "cached", "failed", "skipped"}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

func (p Phase) Final() bool { return p >= PhaseDone }

// Weight estimates how much of a file's work is behind it.
func (p Phase) Weight() float64 {
	switch p {
	case PhaseQueued:
		return 0
	case PhaseReading:
		return 0.1
	case PhaseParsing:
		return 0.3
	case PhaseAnalyzing, PhaseFixing:
		return 0.6
	}
	return 1
}

// Event reports a file entering a phase. The event closing a LintAll run
// has an empty File and PhaseDone.
type Event struct {
	File        string
	Phase       Phase
	Diagnostics int
	Err         error
	Elapsed     time.Duration
}

// ProgressSink receives events from every worker goroutine.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink sends events to Ch, blocking when it is full.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(ev Event) {
	if s.Ch != nil {
		s.Ch <- ev
	}
}

type nopSink struct{}

func (nopSink) OnEvent(Event) {}
