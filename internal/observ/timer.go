package observ

import (
	"fmt"
	"strings"
	"sync"
	"text/tabwriter"
	"time"
)

// StageTiming is one finished or running stage of a command.
type StageTiming struct {
	Name    string
	Elapsed time.Duration
	Note    string
	started time.Time
	done    bool
}

// Timer collects wall-clock stage timings for --timings.
type Timer struct {
	mu     sync.Mutex
	stages []StageTiming
}

func NewTimer() *Timer { return &Timer{} }

// Stage is a handle returned by Start.
type Stage struct {
	t   *Timer
	idx int
}

func (t *Timer) Start(name string) Stage {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stages = append(t.stages, StageTiming{Name: name, started: time.Now()})
	return Stage{t: t, idx: len(t.stages) - 1}
}

// Stop records the stage once and returns its duration; a second Stop
// keeps the first result.
func (s Stage) Stop(note string) time.Duration {
	if s.t == nil {
		return 0
	}
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	st := &s.t.stages[s.idx]
	if !st.done {
		st.Elapsed, st.Note, st.done = time.Since(st.started), note, true
	}
	return st.Elapsed
}

// Stages lists finished stages in start order.
func (t *Timer) Stages() []StageTiming {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]StageTiming, 0, len(t.stages))
	for _, st := range t.stages {
		if st.done {
			out = append(out, st)
		}
	}
	return out
}

// Reset drops everything recorded so far. Watch mode calls it per round.
func (t *Timer) Reset() {
	t.mu.Lock()
	t.stages = t.stages[:0]
	t.mu.Unlock()
}

// Summary is the table printed by --timings.
func (t *Timer) Summary() string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', tabwriter.AlignRight)
	var total time.Duration
	sb.WriteString("timings:\n")
	for _, st := range t.Stages() {
		total += st.Elapsed
		fmt.Fprintf(tw, "  %s\t%s\t %s\t\n", st.Name, millis(st.Elapsed), st.Note)
	}
	fmt.Fprintf(tw, "  total\t%s\t \t\n", millis(total))
	_ = tw.Flush()
	return sb.String()
}

func millis(d time.Duration) string {
	return fmt.Sprintf("%.2fms", float64(d)/float64(time.Millisecond))
}
