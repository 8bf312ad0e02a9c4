package errhandle

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"faultline/internal/component"
	"faultline/internal/config"
	"faultline/internal/debug"
	"faultline/internal/incident"
	"faultline/internal/reactivity"
	"faultline/internal/trace"
)

type sinkCall struct {
	err  error
	vm   component.Instance
	info string
}

type fixture struct {
	h     *Handler
	cell  *config.Cell
	stack *reactivity.TargetStack
	out   *bytes.Buffer
	sinks []sinkCall
}

func newFixture(t *testing.T, cfg config.Config, withSink bool) *fixture {
	t.Helper()
	f := &fixture{
		stack: reactivity.NewTargetStack(),
		out:   &bytes.Buffer{},
	}
	if withSink {
		cfg.ErrorHandler = func(err error, vm component.Instance, info string) error {
			f.sinks = append(f.sinks, sinkCall{err: err, vm: vm, info: info})
			return nil
		}
	}
	f.cell = config.NewCell(cfg)
	f.h = New(Options{Config: f.cell, Barrier: f.stack, Console: debug.NewConsole(f.out)})
	return f
}

func (f *fixture) assertBalanced(t *testing.T) {
	t.Helper()
	pushes, pops := f.stack.Counts()
	if pushes != pops || f.stack.Depth() != 0 {
		t.Fatalf("barrier unbalanced: pushes=%d pops=%d depth=%d", pushes, pops, f.stack.Depth())
	}
}

func hookLog(log *[]string, name string, verdict component.Propagation) component.RecoveryHook {
	return func(err error, origin component.Instance, info string) (component.Propagation, error) {
		*log = append(*log, name+":"+err.Error()+":"+info)
		return verdict, nil
	}
}

// root -> a -> b
func chain() (root, a, b *component.Node) {
	root = component.NewRoot(component.NewKind(component.Options{}))
	a = root.NewChild(component.NewKind(component.Options{Name: "panel"}))
	b = a.NewChild(component.NewKind(component.Options{Name: "my-button"}))
	return root, a, b
}

func TestNoHooksLogsOnceAndCallsSinkOnce(t *testing.T) {
	f := newFixture(t, config.Config{}, true)
	_, _, b := chain()
	boom := errors.New("boom")

	f.h.HandleError(boom, b, "render function")

	if len(f.sinks) != 1 {
		t.Fatalf("sink calls = %d, want 1", len(f.sinks))
	}
	if s := f.sinks[0]; s.err != boom || s.vm != component.Instance(b) || s.info != "render function" {
		t.Fatalf("sink call = %+v", s)
	}
	want := "[Warning]: Error in render function: \"boom\"" +
		"\n\nfound in\n\n" +
		"---> <MyButton>\n" +
		"       <Panel>\n" +
		"         <Root>\n" +
		"boom\n"
	if got := f.out.String(); got != want {
		t.Fatalf("console mismatch:\n got %q\nwant %q", got, want)
	}
	f.assertBalanced(t)
}

func TestNoHooksWithoutSinkStillLogs(t *testing.T) {
	f := newFixture(t, config.Config{}, false)
	_, _, b := chain()

	f.h.HandleError(errors.New("plain"), b, "v-on handler")

	out := f.out.String()
	if !strings.Contains(out, `[Warning]: Error in v-on handler: "plain"`) {
		t.Fatalf("missing warning: %q", out)
	}
	if !strings.HasSuffix(out, "plain\n") {
		t.Fatalf("missing raw error print: %q", out)
	}
	f.assertBalanced(t)
}

func TestStopPropagationSuppressesEverythingAbove(t *testing.T) {
	f := newFixture(t, config.Config{}, true)
	root := component.NewRoot(component.NewKind(component.Options{}))
	var log []string
	a := root.NewChild(component.NewKind(component.Options{}), component.WithHooks(hookLog(&log, "a", component.Propagate)))
	b := a.NewChild(component.NewKind(component.Options{}), component.WithHooks(
		hookLog(&log, "b1", component.StopPropagation),
		hookLog(&log, "b2", component.Propagate),
	))
	c := b.NewChild(component.NewKind(component.Options{}))

	f.h.HandleError(errors.New("boom"), c, "render function")

	if len(log) != 1 || log[0] != "b1:boom:render function" {
		t.Fatalf("hook log = %v", log)
	}
	if len(f.sinks) != 0 || f.out.Len() != 0 {
		t.Fatalf("suppressed error reached the fallback: sinks=%d out=%q", len(f.sinks), f.out.String())
	}
	f.assertBalanced(t)
}

func TestAncestorStopsAfterChildHookObserves(t *testing.T) {
	f := newFixture(t, config.Config{}, true)
	var log []string
	root := component.NewRoot(component.NewKind(component.Options{}), component.WithHooks(hookLog(&log, "root", component.StopPropagation)))
	a := root.NewChild(component.NewKind(component.Options{}), component.WithHooks(hookLog(&log, "a", component.Propagate)))
	b := a.NewChild(component.NewKind(component.Options{}))

	f.h.HandleError(errors.New("boom"), b, "render function")

	want := []string{"a:boom:render function", "root:boom:render function"}
	if strings.Join(log, "|") != strings.Join(want, "|") {
		t.Fatalf("hook log = %v, want %v", log, want)
	}
	if len(f.sinks) != 0 {
		t.Fatalf("sink must not run, got %d calls", len(f.sinks))
	}
	f.assertBalanced(t)
}

func TestFailingHookDoesNotStopWalk(t *testing.T) {
	f := newFixture(t, config.Config{}, true)
	var log []string
	hookErr := errors.New("hook broke")
	root := component.NewRoot(component.NewKind(component.Options{}))
	a := root.NewChild(component.NewKind(component.Options{}), component.WithHooks(hookLog(&log, "a", component.Propagate)))
	b := a.NewChild(component.NewKind(component.Options{}), component.WithHooks(
		func(error, component.Instance, string) (component.Propagation, error) {
			return component.StopPropagation, hookErr
		},
		func(error, component.Instance, string) (component.Propagation, error) {
			panic("hook panicked")
		},
		hookLog(&log, "b3", component.Propagate),
	))
	c := b.NewChild(component.NewKind(component.Options{}))
	boom := errors.New("boom")

	f.h.HandleError(boom, c, "render function")

	if strings.Join(log, "|") != "b3:boom:render function|a:boom:render function" {
		t.Fatalf("hook log = %v", log)
	}
	if len(f.sinks) != 3 {
		t.Fatalf("sink calls = %d, want 3", len(f.sinks))
	}
	if s := f.sinks[0]; s.err != hookErr || s.vm != component.Instance(b) || s.info != "errorCaptured hook" {
		t.Fatalf("first sink call = %+v", s)
	}
	var pe *PanicError
	if s := f.sinks[1]; !errors.As(s.err, &pe) || pe.Value != "hook panicked" || s.info != "errorCaptured hook" {
		t.Fatalf("second sink call = %+v", s)
	}
	if s := f.sinks[2]; s.err != boom || s.vm != component.Instance(c) {
		t.Fatalf("original error sink call = %+v", s)
	}
	f.assertBalanced(t)
}

func TestSinkErrorIsLoggedUnlessRethrown(t *testing.T) {
	sinkBug := errors.New("sink bug")
	f := newFixture(t, config.Config{}, false)
	f.cell.SetErrorHandler(func(error, component.Instance, string) error { return sinkBug })

	f.h.HandleError(errors.New("boom"), nil, "nextTick")
	out := f.out.String()
	if !strings.Contains(out, `Error in config.errorHandler: "sink bug"`) {
		t.Fatalf("sink failure not logged: %q", out)
	}
	if !strings.Contains(out, `Error in nextTick: "boom"`) {
		t.Fatalf("original error not logged: %q", out)
	}

	f.out.Reset()
	f.cell.SetErrorHandler(func(err error, _ component.Instance, _ string) error { panic(err) })
	f.h.HandleError(errors.New("again"), nil, "nextTick")
	out = f.out.String()
	if strings.Contains(out, "config.errorHandler") {
		t.Fatalf("rethrown original must not be logged twice: %q", out)
	}
	if strings.Count(out, "again") != 2 {
		t.Fatalf("want one warning and one print, got %q", out)
	}
	f.assertBalanced(t)
}

func TestHeadlessRethrows(t *testing.T) {
	f := newFixture(t, config.Config{Env: config.Headless, Silent: true}, true)
	_, _, b := chain()
	boom := errors.New("fatal")

	func() {
		defer func() {
			r := recover()
			if r != boom {
				t.Fatalf("recovered %v, want the original error", r)
			}
		}()
		f.h.HandleError(boom, b, "render function")
		t.Fatalf("HandleError must re-raise in a headless host")
	}()

	if len(f.sinks) != 1 {
		t.Fatalf("sink calls = %d, want 1", len(f.sinks))
	}
	if f.out.Len() != 0 {
		t.Fatalf("silent headless host printed %q", f.out.String())
	}
	f.assertBalanced(t)
}

func TestProductionSkipsWarning(t *testing.T) {
	f := newFixture(t, config.Config{Mode: config.Production}, false)
	_, _, b := chain()
	f.h.HandleError(errors.New("boom"), b, "render function")
	if got := f.out.String(); got != "boom\n" {
		t.Fatalf("console = %q, want only the raw error", got)
	}
}

func TestSilentSuppressesConsole(t *testing.T) {
	f := newFixture(t, config.Config{Silent: true}, true)
	f.h.HandleError(errors.New("boom"), nil, "render function")
	if f.out.Len() != 0 {
		t.Fatalf("silent console wrote %q", f.out.String())
	}
	if len(f.sinks) != 1 {
		t.Fatalf("sink calls = %d, want 1", len(f.sinks))
	}
}

func TestNilErrorIsIgnored(t *testing.T) {
	f := newFixture(t, config.Config{}, true)
	f.h.HandleError(nil, nil, "render function")
	if len(f.sinks) != 0 || f.out.Len() != 0 {
		t.Fatalf("nil error must be ignored")
	}
	f.assertBalanced(t)
}

func TestHooksDoNotSubscribeDuringHandling(t *testing.T) {
	f := newFixture(t, config.Config{Silent: true}, false)
	dep := reactivity.NewDep(f.stack)
	renders := 0
	render := reactivity.NewWatcher("render", func() { renders++ })

	root := component.NewRoot(component.NewKind(component.Options{}), component.WithHooks(
		func(error, component.Instance, string) (component.Propagation, error) {
			dep.Depend()
			return component.StopPropagation, nil
		},
	))
	child := root.NewChild(component.NewKind(component.Options{}))

	f.stack.PushTarget(render)
	f.h.HandleError(errors.New("boom"), child, "render function")
	if f.stack.Current() != render {
		t.Fatalf("handling must restore the render target")
	}
	f.stack.PopTarget()

	if dep.Subscribers() != 0 {
		t.Fatalf("hook read subscribed %d watchers", dep.Subscribers())
	}
	dep.Notify()
	if renders != 0 {
		t.Fatalf("render re-ran %d times", renders)
	}
	f.assertBalanced(t)
}

func TestBarrierBalancedAcrossOutcomes(t *testing.T) {
	outcomes := map[string]component.RecoveryHook{
		"propagate": func(error, component.Instance, string) (component.Propagation, error) {
			return component.Propagate, nil
		},
		"stop": func(error, component.Instance, string) (component.Propagation, error) {
			return component.StopPropagation, nil
		},
		"fail":  func(error, component.Instance, string) (component.Propagation, error) { return 0, errors.New("x") },
		"panic": func(error, component.Instance, string) (component.Propagation, error) { panic("x") },
	}
	for _, env := range []config.Env{config.Console, config.Headless} {
		for name, hook := range outcomes {
			t.Run(env.String()+"/"+name, func(t *testing.T) {
				f := newFixture(t, config.Config{Env: env, Silent: true}, false)
				root := component.NewRoot(component.NewKind(component.Options{}), component.WithHooks(hook, hook))
				child := root.NewChild(component.NewKind(component.Options{}))
				func() {
					defer func() { _ = recover() }()
					f.h.HandleError(errors.New("boom"), child, "render function")
				}()
				f.assertBalanced(t)
			})
		}
	}
}

type memJournal struct{ incidents []incident.Incident }

func (m *memJournal) Record(inc incident.Incident) error {
	m.incidents = append(m.incidents, inc)
	return nil
}

func TestJournalRecordsTerminalErrors(t *testing.T) {
	var out bytes.Buffer
	j := &memJournal{}
	ring := trace.NewRingTracer(32, trace.LevelDebug)
	h := New(Options{
		Config:  config.NewCell(config.Config{Silent: true}),
		Console: debug.NewConsole(&out),
		Tracer:  ring,
		Journal: j,
	})
	_, _, b := chain()
	h.HandleError(errors.New("boom"), b, "render function")

	if len(j.incidents) != 1 {
		t.Fatalf("incidents = %d, want 1", len(j.incidents))
	}
	inc := j.incidents[0]
	if inc.Message != "boom" || inc.Info != "render function" || inc.Depth != 2 || inc.Component != "<MyButton>" || inc.Rethrown {
		t.Fatalf("incident = %+v", inc)
	}
	if !strings.HasPrefix(inc.Trace, "\n\nfound in") {
		t.Fatalf("incident trace = %q", inc.Trace)
	}

	var names []string
	for _, ev := range ring.Snapshot() {
		names = append(names, ev.Name+"/"+ev.Detail)
	}
	got := strings.Join(names, " ")
	if !strings.Contains(got, "handleError/") || !strings.Contains(got, "logError/console") || !strings.Contains(got, "handleError/dispatched") {
		t.Fatalf("trace events = %s", got)
	}
}

// listError is an error type that cannot be compared with ==.
type listError struct{ fields []string }

func (e listError) Error() string { return "invalid: " + strings.Join(e.fields, ",") }

func TestSameErrorIdentity(t *testing.T) {
	boom := errors.New("boom")
	le := listError{fields: []string{"a"}}
	tests := []struct {
		name string
		a, b error
		want bool
	}{
		{"same value", boom, boom, true},
		{"equal text", errors.New("x"), errors.New("x"), false},
		{"both nil", nil, nil, true},
		{"one nil", boom, nil, false},
		{"pointer to uncomparable", &le, &le, true},
		{"uncomparable value", le, le, false},
	}
	for _, tt := range tests {
		if got := sameError(tt.a, tt.b); got != tt.want {
			t.Fatalf("%s: sameError = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSinkRethrowingUncomparableErrorIsLoggedTwice(t *testing.T) {
	f := newFixture(t, config.Config{Mode: config.Production}, false)
	f.cell.SetErrorHandler(func(err error, _ component.Instance, _ string) error { return err })

	f.h.HandleError(listError{fields: []string{"name"}}, nil, "render function")

	if got := strings.Count(f.out.String(), "invalid: name"); got != 2 {
		t.Fatalf("console = %q, want the error printed twice", f.out.String())
	}
}
