// Package trace records what a tidy run is doing.
//
// It is the logging layer of the tool: every phase of a run opens a span and
// closes it with a short detail string, and recoverable problems are emitted
// as point events. Output goes to a stream (stderr or a file, text or NDJSON),
// to an in-memory ring that is dumped when the run fails, or to both.
//
// # Usage
//
//	tidy check --trace=- --trace-level=detail ./...
//
// # Levels
//
//   - LevelOff: No tracing
//   - LevelError: Only the ring dump on failure
//   - LevelPhase: Driver and pass boundaries
//   - LevelDetail: Per-unit events
//   - LevelDebug: Everything, including per-check events
//
// # Scopes
//
//   - ScopeDriver: the run as a whole (config loading, planning)
//   - ScopePass: resolve/apply/write phases
//   - ScopeUnit: one analyzed file
//   - ScopeCheck: one check running on one file
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePass, "resolve", trace.ParentFrom(ctx))
//	defer span.End("")
package trace
