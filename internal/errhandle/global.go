package errhandle

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"faultline/internal/component"
	"faultline/internal/config"
	"faultline/internal/incident"
	"faultline/internal/trace"
)

// globalHandleError is the terminal sink for errors no hook suppressed.
// The configured ErrorHandler observes the error; logging always follows.
func (h *Handler) globalHandleError(err error, vm component.Instance, info string, parent uint64) {
	cfg := h.cfg.Load()
	if cfg.ErrorHandler != nil {
		sinkErr := callSink(cfg.ErrorHandler, err, vm, info)
		switch {
		case sinkErr == nil:
			h.point(trace.ScopeSink, "errorHandler", parent, "ok", vm, -1)
		case sameError(sinkErr, err):
			// rethrown on purpose; the log below reports it once
			h.point(trace.ScopeSink, "errorHandler", parent, "rethrew", vm, -1)
		default:
			h.point(trace.ScopeSink, "errorHandler", parent, "failed", vm, -1)
			h.logError(sinkErr, nil, "config.errorHandler", parent)
		}
	}
	h.logError(err, vm, info, parent)
}

func callSink(sink config.ErrorHandler, err error, vm component.Instance, info string) (sinkErr error) {
	defer func() {
		if r := recover(); r != nil {
			sinkErr = errorFromPanic(r)
		}
	}()
	return sink(err, vm, info)
}

// logError warns in development, then prints to the console or re-raises
// when the host has none.
func (h *Handler) logError(err error, vm component.Instance, info string, parent uint64) {
	cfg := h.cfg.Load()
	if cfg.Mode == config.Development {
		h.debug.Warn(fmt.Sprintf("Error in %s: \"%s\"", info, err.Error()), vm)
	}

	rethrow := cfg.Env == config.Headless
	h.record(err, vm, info, rethrow, parent)

	if !rethrow {
		h.point(trace.ScopeSink, "logError", parent, "console", vm, -1)
		if !cfg.Silent {
			h.console.Error(err)
		}
		return
	}
	h.point(trace.ScopeSink, "logError", parent, "rethrow", vm, -1)
	panic(err)
}

func (h *Handler) record(err error, vm component.Instance, info string, rethrown bool, parent uint64) {
	if h.journal == nil {
		return
	}
	depth, derr := incident.DepthOf(component.Depth(vm))
	if derr != nil {
		depth = math.MaxUint16
	}
	inc := incident.Incident{
		Time:     time.Now(),
		Info:     info,
		Message:  err.Error(),
		Depth:    depth,
		Rethrown: rethrown,
	}
	if vm != nil {
		inc.Component = h.debug.FormatComponentName(vm, true)
		inc.Trace = h.debug.GenerateComponentTrace(vm)
	}
	if rerr := h.journal.Record(inc); rerr != nil {
		trace.Point(h.tracer, trace.ScopeSink, "journal", parent, rerr.Error(), nil)
	}
}

// point emits a trace event describing vm; extras are only built when the
// event will be kept.
func (h *Handler) point(scope trace.Scope, name string, parent uint64, detail string, vm component.Instance, hookIndex int) {
	if !h.tracer.Enabled() || !h.tracer.Level().ShouldEmit(scope) {
		return
	}
	extra := make(map[string]string, 2)
	if vm != nil {
		if label := h.debug.FormatComponentName(vm, false); label != "" {
			extra["component"] = label
		}
	}
	if hookIndex >= 0 {
		extra["hook"] = strconv.Itoa(hookIndex)
	}
	trace.Point(h.tracer, scope, name, parent, detail, extra)
}
