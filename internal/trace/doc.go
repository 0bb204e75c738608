// Package trace records what gtrans is doing: commands, files, passes and,
// at debug level, single rule applications.
//
// Enable it from the command line:
//
//	gtrans translate --trace=- --trace-level=pass -g grammars -s src
//
// Tracers:
//
//   - Nop: disabled tracing
//   - StreamTracer: writes every event at once (text or NDJSON)
//   - RingTracer: keeps the last N events for a dump after a failure
//   - MultiTracer: fans events out to several tracers
//
// Scopes from coarse to fine are driver, file, pass and rule. The level picks
// how deep events are kept: phase keeps driver and file, detail adds passes,
// debug keeps everything.
//
// Tracers travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "literal", parentID)
//	defer span.End("")
package trace
