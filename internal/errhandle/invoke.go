package errhandle

import (
	"reflect"

	"faultline/internal/component"
	"faultline/internal/trace"
)

// Func is user code run under error handling. Receiver binding is done with
// method values or closures.
type Func func(args ...any) (any, error)

// Thenable is a deferred value that accepts continuations.
type Thenable interface {
	Then(onFulfilled func(any))
	Catch(onRejected func(error))
}

// InvokeWithErrorHandling calls fn with args. A returned error or a panic is
// routed to HandleError and the result is nil. A pending Thenable result gets
// one rejection continuation; it is remembered until it settles.
func (h *Handler) InvokeWithErrorHandling(fn Func, args []any, vm component.Instance, info string) any {
	if fn == nil {
		return nil
	}
	h.point(trace.ScopeInvoke, "invoke", 0, info, vm, -1)

	res, err := invoke(fn, args)
	if err != nil {
		h.HandleError(err, vm, info)
		return nil
	}
	if p, ok := res.(Thenable); ok && !isNil(res) && !isInstance(res) && h.markHandled(p) {
		if err := h.watch(p, vm, info+" (Promise/async)"); err != nil {
			h.forget(p)
			h.HandleError(err, vm, info)
		}
	}
	return res
}

// watch registers the rejection continuation on p. Both continuations drop
// p from the handled side-table once it settles. A panic from p's own
// Then/Catch is returned as an error.
func (h *Handler) watch(p Thenable, vm component.Instance, asyncInfo string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errorFromPanic(r)
		}
	}()
	p.Then(func(any) {
		h.forget(p)
	})
	p.Catch(func(e error) {
		h.forget(p)
		h.HandleError(e, vm, asyncInfo)
	})
	return nil
}

func invoke(fn Func, args []any) (res any, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, errorFromPanic(r)
		}
	}()
	res, err = fn(args...)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// isNil reports whether v is nil or a typed nil.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func isInstance(v any) bool {
	_, ok := v.(component.Instance)
	return ok
}

// markHandled records p in the handled side-table and reports whether it was
// new. Values whose type cannot be a map key are never recorded.
func (h *Handler) markHandled(p Thenable) bool {
	if !reflect.TypeOf(p).Comparable() {
		return true
	}
	h.handledMu.Lock()
	defer h.handledMu.Unlock()
	if _, ok := h.handled[p]; ok {
		return false
	}
	h.handled[p] = struct{}{}
	return true
}

func (h *Handler) forget(p Thenable) {
	if !reflect.TypeOf(p).Comparable() {
		return
	}
	h.handledMu.Lock()
	defer h.handledMu.Unlock()
	delete(h.handled, p)
}

func (h *Handler) handledLen() int {
	h.handledMu.Lock()
	defer h.handledMu.Unlock()
	return len(h.handled)
}

// IsHandled reports whether p carries a rejection continuation from this
// handler and has not settled yet.
func (h *Handler) IsHandled(p Thenable) bool {
	if p == nil || !reflect.TypeOf(p).Comparable() {
		return false
	}
	h.handledMu.Lock()
	defer h.handledMu.Unlock()
	_, ok := h.handled[p]
	return ok
}
