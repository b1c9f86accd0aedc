// Package trace records lint runs as nested spans.
//
// Tracing is off unless requested on the command line:
//
//	weblint lint --trace=- --trace-level=detail src/
//
// # Tracers
//
//   - Nop: disabled tracing, no allocations
//   - StreamTracer: writes every event to a file or stderr
//   - RingTracer: keeps the last N events for a dump on failure
//   - MultiTracer: fans out to several tracers
//
// # Levels and scopes
//
// A level admits every scope at or above its granularity:
//
//   - LevelPhase: ScopeRun and ScopeStage (config, collect, lint, report)
//   - LevelDetail: adds ScopeFile, one span per linted file
//   - LevelDebug: adds ScopePhase, analyzer phases and fix iterations
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	sp := trace.Begin(trace.FromContext(ctx), trace.ScopeFile, path, trace.ParentID(ctx))
//	defer sp.End("")
package trace
