package trace

import (
	"context"
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
	openSpans   atomic.Int64
)

// NextSeq numbers events in the order sinks receive them.
func NextSeq() uint64 { return seqCounter.Add(1) }

// OpenSpans is the number of spans begun and not yet ended.
func OpenSpans() int64 { return openSpans.Load() }

// goid reads the current goroutine number from the stack header
// "goroutine 17 [running]:".
func goid() uint64 {
	var buf [64]byte
	header := string(buf[:runtime.Stack(buf[:], false)])
	fields := strings.Fields(strings.TrimPrefix(header, "goroutine "))
	if len(fields) == 0 {
		return 0
	}
	id, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// Span is one begin/end pair. The zero Span (and a nil *Span) is inert.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	gid     uint64
	scope   Scope
	name    string
	started time.Time
	extra   map[string]string
	ended   atomic.Bool
}

var inert = &Span{}

// Begin emits a begin event under parent (0 for a root span). When t is
// disabled or filters scope out, the returned span records nothing.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if t == nil || !t.Enabled() || !t.Level().Records(scope) {
		return inert
	}
	sp := &Span{
		tracer:  t,
		id:      spanCounter.Add(1),
		parent:  parent,
		gid:     goid(),
		scope:   scope,
		name:    name,
		started: time.Now(),
	}
	openSpans.Add(1)
	t.Emit(sp.event(KindSpanBegin, sp.started, ""))
	return sp
}

// Start begins a span under the one carried by ctx. The returned context
// carries the new span, so nested Start calls link to it.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	sp := Begin(FromContext(ctx), scope, name, ParentID(ctx))
	if sp.id == 0 {
		return ctx, sp
	}
	return withSpan(ctx, sp), sp
}

// End emits the end event once and returns the span's duration. Later calls
// return 0.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.id == 0 || s.ended.Swap(true) {
		return 0
	}
	now := time.Now()
	openSpans.Add(-1)
	ev := s.event(KindSpanEnd, now, detail)
	ev.Extra = s.extra
	s.tracer.Emit(ev)
	return now.Sub(s.started)
}

// WithExtra attaches a key/value pair to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.id == 0 {
		return s
	}
	if s.extra == nil {
		s.extra = map[string]string{}
	}
	s.extra[key] = value
	return s
}

// ID is 0 for inert spans.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

func (s *Span) event(kind Kind, at time.Time, detail string) *Event {
	return &Event{
		Time:     at,
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		GID:      s.gid,
		Name:     s.name,
		Detail:   detail,
	}
}

// Point emits an instant event under parent.
func Point(t Tracer, scope Scope, name, detail string, parent uint64) {
	if t == nil || !t.Enabled() || !t.Level().Records(scope) {
		return
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: parent,
		GID:      goid(),
		Name:     name,
		Detail:   detail,
	})
}
