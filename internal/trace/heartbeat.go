package trace

import (
	"context"
	"fmt"
	"time"
)

// Heartbeat emits a run-scope event every interval with the number of open
// spans. A run of heartbeats with no span ends between them points at a
// rule or file that does not finish.
type Heartbeat struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// StartHeartbeat returns nil when t is disabled or interval is not positive.
func StartHeartbeat(t Tracer, interval time.Duration) *Heartbeat {
	if t == nil || !t.Enabled() || interval <= 0 {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	h := &Heartbeat{cancel: cancel, done: make(chan struct{})}
	go h.beat(ctx, t, interval)
	return h
}

func (h *Heartbeat) beat(ctx context.Context, t Tracer, interval time.Duration) {
	defer close(h.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	gid := goid()
	for n := 1; ; n++ {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			t.Emit(&Event{
				Time:   now,
				Kind:   KindHeartbeat,
				Scope:  ScopeRun,
				GID:    gid,
				Name:   "heartbeat",
				Detail: fmt.Sprintf("#%d open=%d", n, OpenSpans()),
			})
		}
	}
}

// Stop ends the ticker goroutine and waits for it. Safe on nil and safe to
// call twice.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.cancel()
	<-h.done
}
