package scenario

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"faultline/internal/component"
	"faultline/internal/config"
	"faultline/internal/debug"
	"faultline/internal/deferred"
	"faultline/internal/errhandle"
	"faultline/internal/reactivity"
	"faultline/internal/trace"
)

// Outcome is how a scenario's failure ended.
type Outcome uint8

const (
	// OutcomeLogged means the error reached the global fallback and was printed.
	OutcomeLogged Outcome = iota
	// OutcomeSuppressed means a recovery hook stopped propagation.
	OutcomeSuppressed
	// OutcomeRethrown means the headless host re-raised the error.
	OutcomeRethrown
)

// String returns the string representation of Outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeLogged:
		return "logged"
	case OutcomeSuppressed:
		return "suppressed"
	case OutcomeRethrown:
		return "rethrown"
	default:
		return "unknown"
	}
}

// ParseOutcome converts a string to an Outcome.
func ParseOutcome(s string) (Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "logged":
		return OutcomeLogged, nil
	case "suppressed":
		return OutcomeSuppressed, nil
	case "rethrown":
		return OutcomeRethrown, nil
	default:
		return OutcomeLogged, fmt.Errorf("invalid outcome: %q (expected: logged|suppressed|rethrown)", s)
	}
}

// HookCall is one recovery hook invocation.
type HookCall struct {
	Component string
	Index     int
	Action    string
	Error     string
	Info      string
}

// SinkCall is one invocation of the global error handler.
type SinkCall struct {
	Component string
	Info      string
	Message   string
}

// Result is the observable trace of one scenario run.
type Result struct {
	Path    string
	Name    string
	Outcome Outcome
	Hooks   []HookCall
	Sinks   []SinkCall
	Console string
	// Rethrown is the value the headless host re-raised, if any.
	Rethrown any
	// BarrierDepth is the tracking stack depth after the run; always 0
	// unless the pipeline leaked a barrier.
	BarrierDepth int
	Pushes       uint64
	Pops         uint64
	Turns        uint64
	Err          error

	expect Expectations
}

// Check compares the result with the scenario's [expect] table.
func (r *Result) Check() error {
	if r.Err != nil {
		return r.Err
	}
	var problems []string
	if r.BarrierDepth != 0 || r.Pushes != r.Pops {
		problems = append(problems, fmt.Sprintf("tracking barrier unbalanced (pushes=%d pops=%d depth=%d)", r.Pushes, r.Pops, r.BarrierDepth))
	}
	if want := r.expect.Outcome; want != "" {
		if o, err := ParseOutcome(want); err == nil && o != r.Outcome {
			problems = append(problems, fmt.Sprintf("outcome = %s, want %s", r.Outcome, o))
		}
	}
	if want := r.expect.SinkCalls; want != nil && *want != len(r.Sinks) {
		problems = append(problems, fmt.Sprintf("sink calls = %d, want %d", len(r.Sinks), *want))
	}
	if want := r.expect.HookCalls; want != nil && *want != len(r.Hooks) {
		problems = append(problems, fmt.Sprintf("hook calls = %d, want %d", len(r.Hooks), *want))
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%s: %s", r.Name, strings.Join(problems, "; "))
}

// runState is reset on every Execute.
type runState struct {
	hooks   []HookCall
	sinks   []SinkCall
	stopped bool
}

// Run is a built scenario ready to execute. A Run is not safe for
// concurrent use.
type Run struct {
	file    *File
	root    *component.Node
	nodes   map[string]*component.Node
	ids     map[component.Instance]string
	tracer  trace.Tracer
	journal errhandle.Recorder
	state   *runState
}

// Build assembles the component tree and its hooks.
func (f *File) Build() (*Run, error) {
	r := &Run{
		file:  f,
		nodes: make(map[string]*component.Node, len(f.Components)),
		ids:   make(map[component.Instance]string, len(f.Components)),
		state: &runState{},
	}

	kinds := make(map[string]*component.Kind)
	kindOf := func(c ComponentDecl) (*component.Kind, error) {
		opts := component.Options{Name: c.Name, File: c.File}
		if c.Kind == "" {
			return component.NewKind(opts), nil
		}
		if k, ok := kinds[c.Kind]; ok {
			have := k.Options()
			if (c.Name != "" && c.Name != have.Name) || (c.File != "" && c.File != have.File) {
				return nil, fmt.Errorf("component %q: kind %q already declared with name %q file %q", c.ID, c.Kind, have.Name, have.File)
			}
			return k, nil
		}
		k := component.NewKind(opts)
		kinds[c.Kind] = k
		return k, nil
	}

	for _, c := range f.Components {
		kind, err := kindOf(c)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Path, err)
		}
		var opts []component.NodeOption
		if c.Tag != "" {
			opts = append(opts, component.WithComponentTag(c.Tag))
		}
		var n *component.Node
		if c.Parent == "" {
			n = component.NewRoot(kind, opts...)
			r.root = n
		} else {
			n = r.nodes[c.Parent].NewChild(kind, opts...)
		}
		r.nodes[c.ID] = n
		r.ids[n] = c.ID
	}

	counts := make(map[string]int)
	for _, h := range f.Hooks {
		idx := counts[h.Component]
		counts[h.Component]++
		r.nodes[h.Component].OnErrorCaptured(r.hook(h, idx))
	}
	return r, nil
}

// WithTracer sets the tracer handed to the pipeline.
func (r *Run) WithTracer(t trace.Tracer) *Run {
	r.tracer = t
	return r
}

// WithJournal sets where terminal errors are recorded.
func (r *Run) WithJournal(j errhandle.Recorder) *Run {
	r.journal = j
	return r
}

// Root returns the root instance.
func (r *Run) Root() *component.Node {
	return r.root
}

// Node returns the instance declared with id.
func (r *Run) Node(id string) *component.Node {
	return r.nodes[id]
}

func (r *Run) hook(h HookDecl, idx int) component.RecoveryHook {
	return func(err error, _ component.Instance, info string) (component.Propagation, error) {
		r.state.hooks = append(r.state.hooks, HookCall{
			Component: h.Component,
			Index:     idx,
			Action:    h.Action,
			Error:     err.Error(),
			Info:      info,
		})
		msg := h.Message
		if msg == "" {
			msg = fmt.Sprintf("hook %s[%d] failed", h.Component, idx)
		}
		switch h.Action {
		case ActionStop:
			r.state.stopped = true
			return component.StopPropagation, nil
		case ActionFail:
			return component.Propagate, errors.New(msg)
		case ActionPanic:
			panic(msg)
		default:
			return component.Propagate, nil
		}
	}
}

func (r *Run) sink() config.ErrorHandler {
	mode := r.file.Config.ErrorHandler
	if mode == SinkNone {
		return nil
	}
	return func(err error, vm component.Instance, info string) error {
		r.state.sinks = append(r.state.sinks, SinkCall{
			Component: r.label(vm),
			Info:      info,
			Message:   err.Error(),
		})
		switch mode {
		case SinkFail:
			return fmt.Errorf("error handler failed on %q", err.Error())
		case SinkRethrow:
			return err
		default:
			return nil
		}
	}
}

func (r *Run) label(vm component.Instance) string {
	if vm == nil {
		return ""
	}
	if id, ok := r.ids[vm]; ok {
		return id
	}
	return debug.FormatComponentName(vm, false)
}

func (r *Run) config() config.Config {
	cs := r.file.Config
	// validated by Load
	mode, _ := config.ParseMode(cs.Mode)
	env, _ := config.ParseEnv(cs.Env)
	return config.Config{
		ErrorHandler: r.sink(),
		Silent:       cs.Silent,
		Mode:         mode,
		Env:          env,
	}
}

// failure returns the user function that raises the scenario's error.
func (r *Run) failure(loop *deferred.Loop) errhandle.Func {
	fl := r.file.Failure
	return func(...any) (any, error) {
		switch fl.Mode {
		case ModePanic:
			panic(fl.Message)
		case ModeAsync:
			p, _, reject := deferred.New(loop)
			loop.Enqueue(func() { reject(errors.New(fl.Message)) })
			return p, nil
		default:
			return nil, errors.New(fl.Message)
		}
	}
}

// Execute raises the failure in its component and drains the event loop.
// Console output is captured in the result and copied to w when w is not nil.
func (r *Run) Execute(ctx context.Context, w io.Writer) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.state = &runState{}

	var out bytes.Buffer
	var dst io.Writer = &out
	if w != nil {
		dst = io.MultiWriter(&out, w)
	}

	stack := reactivity.NewTargetStack()
	h := errhandle.New(errhandle.Options{
		Config:  config.NewCell(r.config()),
		Barrier: stack,
		Console: debug.NewConsole(dst),
		Tracer:  r.tracer,
		Journal: r.journal,
	})
	loop := deferred.NewLoop(deferred.Config{})
	vm := r.nodes[r.file.Failure.Component]

	rethrown := guard(func() {
		h.InvokeWithErrorHandling(r.failure(loop), nil, vm, r.file.Failure.Info)
		for loop.RunOnce() {
			if ctx.Err() != nil {
				return
			}
		}
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pushes, pops := stack.Counts()
	res := &Result{
		Path:         r.file.Path,
		Name:         r.file.Title(),
		Hooks:        r.state.hooks,
		Sinks:        r.state.sinks,
		Console:      out.String(),
		Rethrown:     rethrown,
		BarrierDepth: stack.Depth(),
		Pushes:       pushes,
		Pops:         pops,
		Turns:        loop.Turns(),
		expect:       r.file.Expect,
	}
	switch {
	case rethrown != nil:
		res.Outcome = OutcomeRethrown
	case r.state.stopped:
		res.Outcome = OutcomeSuppressed
	default:
		res.Outcome = OutcomeLogged
	}
	return res, nil
}

func guard(fn func()) (rethrown any) {
	defer func() {
		rethrown = recover()
	}()
	fn()
	return nil
}
