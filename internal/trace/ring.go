package trace

import (
	"io"
	"slices"
	"sync"
)

// DefaultRingSize is used when a ring capacity is not positive.
const DefaultRingSize = 4096

// RingTracer keeps the most recent events in memory so they can be dumped
// after a failed run.
type RingTracer struct {
	mu    sync.Mutex
	buf   []Event
	n     uint64 // всего записано
	level Level
}

func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = DefaultRingSize
	}
	return &RingTracer{buf: make([]Event, capacity), level: level}
}

func (t *RingTracer) Emit(ev *Event) {
	if !ev.always() && !t.level.Records(ev.Scope) {
		return
	}
	t.mu.Lock()
	slot := &t.buf[t.n%uint64(len(t.buf))]
	*slot = *ev
	slot.Seq = NextSeq()
	t.n++
	t.mu.Unlock()
}

// Snapshot copies the stored events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	size := uint64(len(t.buf))
	if t.n <= size {
		return slices.Clone(t.buf[:t.n])
	}
	at := t.n % size
	return slices.Concat(t.buf[at:], t.buf[:at])
}

// Dropped is the number of events overwritten by newer ones.
func (t *RingTracer) Dropped() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.n - min(t.n, uint64(len(t.buf)))
}

// Dump writes the stored events to w as one document.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	return writeEvents(w, t.Snapshot(), format)
}

func (t *RingTracer) Flush() error  { return nil }
func (t *RingTracer) Close() error  { return nil }
func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
