package errhandle

import (
	"sync"

	"faultline/internal/component"
	"faultline/internal/config"
	"faultline/internal/debug"
	"faultline/internal/incident"
	"faultline/internal/reactivity"
	"faultline/internal/trace"
)

// Barrier is the dependency-tracking stack. PushTarget(nil) suspends
// tracking until the matching PopTarget.
type Barrier interface {
	PushTarget(w *reactivity.Watcher)
	PopTarget()
}

// Recorder stores errors that reached the log stage.
type Recorder interface {
	Record(inc incident.Incident) error
}

// Options configures a Handler. Nil fields get defaults.
type Options struct {
	Config  *config.Cell  // default: development, console, no sinks
	Barrier Barrier       // default: a private target stack
	Console debug.Console // default: stderr
	Tracer  trace.Tracer  // default: trace.Nop
	Journal Recorder      // default: none
}

// Handler owns the error pipeline of one host.
type Handler struct {
	cfg     *config.Cell
	barrier Barrier
	console debug.Console
	debug   *debug.Reporter
	tracer  trace.Tracer
	journal Recorder

	handledMu sync.Mutex
	handled   map[any]struct{}
}

// New constructs a Handler.
func New(opts Options) *Handler {
	h := &Handler{
		cfg:     opts.Config,
		barrier: opts.Barrier,
		console: opts.Console,
		tracer:  opts.Tracer,
		journal: opts.Journal,
		handled: make(map[any]struct{}),
	}
	if h.cfg == nil {
		h.cfg = config.NewCell(config.Config{})
	}
	if h.barrier == nil {
		h.barrier = reactivity.NewTargetStack()
	}
	if h.console == nil {
		h.console = debug.StdConsole()
	}
	if h.tracer == nil {
		h.tracer = trace.Nop
	}
	h.debug = debug.NewReporter(h.cfg, h.console)
	return h
}

// Config returns the host-owned configuration cell.
func (h *Handler) Config() *config.Cell { return h.cfg }

// Reporter returns the warn/tip channel bound to this handler's config.
func (h *Handler) Reporter() *debug.Reporter { return h.debug }

// HandleError routes err raised in vm through the ancestors' recovery hooks
// and, unless a hook stops it, to the global fallback.
func (h *Handler) HandleError(err error, vm component.Instance, info string) {
	if err == nil {
		return
	}
	h.barrier.PushTarget(nil)
	defer h.barrier.PopTarget()

	span := trace.Begin(h.tracer, trace.ScopeDispatch, "handleError", 0).WithExtra("info", info)
	outcome := "panicked"
	defer func() { span.End(outcome) }()

	if vm != nil {
		for cur := vm.Parent(); cur != nil; cur = cur.Parent() {
			for i, hook := range cur.RecoveryHooks() {
				verdict, hookErr := callHook(hook, err, vm, info)
				if hookErr != nil {
					h.point(trace.ScopeHook, "errorCaptured", span.ID(), "failed", cur, i)
					h.globalHandleError(hookErr, cur, "errorCaptured hook", span.ID())
					continue
				}
				if verdict == component.StopPropagation {
					h.point(trace.ScopeHook, "errorCaptured", span.ID(), "suppressed", cur, i)
					outcome = "suppressed"
					return
				}
				h.point(trace.ScopeHook, "errorCaptured", span.ID(), "propagate", cur, i)
			}
		}
	}
	h.globalHandleError(err, vm, info, span.ID())
	outcome = "dispatched"
}

func callHook(hook component.RecoveryHook, err error, vm component.Instance, info string) (verdict component.Propagation, hookErr error) {
	defer func() {
		if r := recover(); r != nil {
			verdict, hookErr = component.Propagate, errorFromPanic(r)
		}
	}()
	if hook == nil {
		return component.Propagate, nil
	}
	return hook(err, vm, info)
}
