// Package errhandle routes errors raised by user code running inside the
// component tree.
//
// # Pipeline
//
//   - InvokeWithErrorHandling runs user code (render functions, event
//     handlers, watcher callbacks, lifecycle hooks). Returned errors and panics
//     go to HandleError; a returned Thenable gets a rejection continuation that
//     reports with info "{info} (Promise/async)".
//   - HandleError walks the ancestors of the originating instance, child
//     first, and calls their errorCaptured hooks in registration order. A hook
//     returning StopPropagation ends routing. A failing hook is reported on
//     its own with info "errorCaptured hook" and the walk continues.
//   - The global fallback calls config.ErrorHandler (an observer) and then
//     always logs. Logging warns with the ancestry trace in development, then
//     prints to the console, or re-raises with panic when the host has no
//     console.
//
// # Tracking barrier
//
// HandleError pushes a nil target on the dependency-tracking stack for its
// whole duration so that hooks reading reactive state do not subscribe the
// error path to it. The matching pop is deferred, so it also runs when a hook
// or the fallback panics.
//
// Handler is not safe for concurrent use; the pipeline is single-threaded.
package errhandle
