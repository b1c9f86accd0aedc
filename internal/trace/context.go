package trace

import "context"

type (
	tracerKey struct{}
	spanKey   struct{}
)

// FromContext returns the tracer stored in ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx != nil {
		if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
			return t
		}
	}
	return Nop
}

// WithTracer returns a copy of ctx carrying t. A nil t disables tracing.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// ParentID returns the id of the innermost span started with Start, 0 when
// ctx carries none.
func ParentID(ctx context.Context) uint64 {
	if ctx == nil {
		return 0
	}
	sp, _ := ctx.Value(spanKey{}).(*Span)
	return sp.ID()
}

func withSpan(ctx context.Context, sp *Span) context.Context {
	return context.WithValue(ctx, spanKey{}, sp)
}
