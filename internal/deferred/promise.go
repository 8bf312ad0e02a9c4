package deferred

import "errors"

// State describes promise settlement.
type State uint8

const (
	// StatePending means the promise has not settled yet.
	StatePending State = iota
	// StateFulfilled means the promise settled with a value.
	StateFulfilled
	// StateRejected means the promise settled with an error.
	StateRejected
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateFulfilled:
		return "fulfilled"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// ErrNilRejection replaces a nil rejection reason.
var ErrNilRejection = errors.New("deferred: rejected with nil error")

// Promise is a value that settles once, later.
type Promise struct {
	loop        *Loop
	state       State
	value       any
	err         error
	onFulfilled []func(any)
	onRejected  []func(error)
}

// New returns a pending promise with its settle functions.
func New(loop *Loop) (p *Promise, resolve func(any), reject func(error)) {
	p = &Promise{loop: loop}
	return p, p.resolve, p.reject
}

// Resolved returns a promise already fulfilled with v.
func Resolved(loop *Loop, v any) *Promise {
	p, resolve, _ := New(loop)
	resolve(v)
	return p
}

// Rejected returns a promise already rejected with err.
func Rejected(loop *Loop, err error) *Promise {
	p, _, reject := New(loop)
	reject(err)
	return p
}

// State returns the settlement state.
func (p *Promise) State() State {
	return p.state
}

// Result returns the settled value or error. Both are zero while pending.
func (p *Promise) Result() (any, error) {
	return p.value, p.err
}

// Then registers fn to run with the value once the promise is fulfilled.
func (p *Promise) Then(fn func(any)) {
	if fn == nil {
		return
	}
	switch p.state {
	case StatePending:
		p.onFulfilled = append(p.onFulfilled, fn)
	case StateFulfilled:
		v := p.value
		p.loop.Enqueue(func() { fn(v) })
	}
}

// Catch registers fn to run with the reason once the promise is rejected.
func (p *Promise) Catch(fn func(error)) {
	if fn == nil {
		return
	}
	switch p.state {
	case StatePending:
		p.onRejected = append(p.onRejected, fn)
	case StateRejected:
		err := p.err
		p.loop.Enqueue(func() { fn(err) })
	}
}

func (p *Promise) resolve(v any) {
	if p.state != StatePending {
		return
	}
	p.state = StateFulfilled
	p.value = v
	for _, fn := range p.onFulfilled {
		p.loop.Enqueue(func() { fn(v) })
	}
	p.onFulfilled, p.onRejected = nil, nil
}

func (p *Promise) reject(err error) {
	if p.state != StatePending {
		return
	}
	if err == nil {
		err = ErrNilRejection
	}
	p.state = StateRejected
	p.err = err
	for _, fn := range p.onRejected {
		p.loop.Enqueue(func() { fn(err) })
	}
	p.onFulfilled, p.onRejected = nil, nil
}
