// Package trace records what the error pipeline did with each error.
//
// The trace package makes the routing of an error observable: which hooks
// ran, which one suppressed propagation, whether the global sink failed, and
// whether the error ended on the console or was re-raised.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	faultline simulate --trace=- --trace-level=hook scenario.toml
//
// # Architecture
//
// The package provides several tracer implementations:
//
//   - Nop: Zero-overhead no-op tracer when disabled
//   - StreamTracer: Immediate write to output (file/stderr)
//   - RingTracer: Circular buffer, dumped after a re-raise
//
// Mode "both" streams every event and keeps the ring too; Ring finds it.
//
// # Levels
//
// Tracing verbosity is controlled by levels:
//
//   - LevelOff: No tracing
//   - LevelError: Only terminal decisions (console print, re-raise)
//   - LevelDispatch: handleError spans and global sink calls
//   - LevelHook: Every recovery hook invocation
//   - LevelDebug: Everything including guarded invocations
//
// # Scopes
//
// Events are categorized by scope:
//
//   - ScopeSink: Global sink and log/re-raise stage
//   - ScopeDispatch: One handleError call
//   - ScopeHook: A single recovery hook
//   - ScopeInvoke: A guarded invocation of user code
//
// # Context Propagation
//
// Tracers travel with context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeDispatch, "handleError", 0)
//	defer span.End("")
package trace
