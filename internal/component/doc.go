// Package component models the part of the component tree that error routing
// reads.
//
// # Scope
//
// Creating, mounting and destroying components belongs to the host. This
// package only exposes the narrow view the error pipeline consumes:
//
//   - Parent link – a plain, non-owning pointer to the parent instance (nil for
//     the root).
//   - Kind – the constructor identity. Two instances share a kind iff they point
//     to the same *Kind; the trace builder uses it to fold recursive chains.
//   - Metadata – display data (explicit name, component tag, source file).
//   - Recovery hooks – the ordered errorCaptured callbacks of an instance.
//
// # Recovery hooks
//
// A hook receives the error, the instance where it originated and an info
// string naming the call site. It returns a Propagation verdict:
//
//   - Propagate (zero value) lets the error continue upwards.
//   - StopPropagation marks the error as handled; no further hooks run and the
//     global fallback is skipped.
//
// A hook that returns a non-nil error (or panics) has failed; its failure is
// reported on its own and never offered to other hooks.
package component
