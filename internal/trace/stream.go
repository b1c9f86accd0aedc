package trace

import (
	"errors"
	"io"
	"sync"
)

// StreamTracer encodes every kept event to w as it arrives. The first
// write error stops the stream; Close reports it.
type StreamTracer struct {
	mu     sync.Mutex
	w      io.Writer
	level  Level
	format Format
	frame  framing
	sep    string // пусто до первого события
	err    error
	closed bool
}

func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	t := &StreamTracer{w: w, level: level, format: format, frame: format.framing()}
	t.put([]byte(t.frame.open))
	return t
}

// put writes p unless an earlier write failed. Callers hold mu.
func (t *StreamTracer) put(p []byte) {
	if t.err == nil && len(p) > 0 {
		_, t.err = t.w.Write(p)
	}
}

func (t *StreamTracer) Emit(ev *Event) {
	if !ev.always() && !t.level.ShouldEmit(ev.Scope) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	ev.Seq = NextSeq()
	t.put([]byte(t.sep))
	t.put(FormatEvent(ev, t.format))
	t.sep = t.frame.sep
}

// Flush calls Flush on the writer when it has one.
func (t *StreamTracer) Flush() error {
	if f, ok := t.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Close finishes the document and closes a writer New opened.
func (t *StreamTracer) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.put([]byte(t.frame.close))
	err := t.err
	t.mu.Unlock()

	err = errors.Join(err, t.Flush())
	if c, ok := t.w.(io.Closer); ok && ownsWriter(t.w) {
		err = errors.Join(err, c.Close())
	}
	return err
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
