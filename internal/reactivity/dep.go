// Package reactivity holds the dependency-tracking target stack.
//
// A Watcher pushed with PushTarget becomes the current target and every Dep
// read while it is on top subscribes it. Pushing nil installs a tracking
// barrier: reads made under a barrier subscribe nothing. Pushes and pops must
// be strictly balanced.
package reactivity

import "fmt"

// Watcher is a subscriber re-run when one of its deps changes.
type Watcher struct {
	Name   string
	update func()
	deps   map[*Dep]struct{}
}

// NewWatcher creates a watcher that calls update on every notification.
func NewWatcher(name string, update func()) *Watcher {
	return &Watcher{Name: name, update: update, deps: make(map[*Dep]struct{})}
}

// Update runs the watcher callback.
func (w *Watcher) Update() {
	if w == nil || w.update == nil {
		return
	}
	w.update()
}

// DepCount returns how many deps the watcher is subscribed to.
func (w *Watcher) DepCount() int {
	if w == nil {
		return 0
	}
	return len(w.deps)
}

// Dep is an observable value's subscriber list.
type Dep struct {
	stack *TargetStack
	subs  []*Watcher
}

// NewDep creates a Dep tracked against stack.
func NewDep(stack *TargetStack) *Dep {
	return &Dep{stack: stack}
}

// Depend subscribes the current target, if any.
func (d *Dep) Depend() {
	if d == nil || d.stack == nil {
		return
	}
	w := d.stack.Current()
	if w == nil {
		return
	}
	if _, ok := w.deps[d]; ok {
		return
	}
	w.deps[d] = struct{}{}
	d.subs = append(d.subs, w)
}

// Notify runs every subscriber in subscription order.
func (d *Dep) Notify() {
	if d == nil {
		return
	}
	subs := append([]*Watcher(nil), d.subs...)
	for _, w := range subs {
		w.Update()
	}
}

// Subscribers returns the number of subscribed watchers.
func (d *Dep) Subscribers() int {
	if d == nil {
		return 0
	}
	return len(d.subs)
}

// TargetStack is the stack of watchers currently collecting dependencies.
type TargetStack struct {
	targets []*Watcher
	pushes  uint64
	pops    uint64
}

// NewTargetStack creates an empty stack.
func NewTargetStack() *TargetStack {
	return &TargetStack{targets: make([]*Watcher, 0, 8)}
}

// PushTarget makes w the current target. A nil w is a tracking barrier.
func (s *TargetStack) PushTarget(w *Watcher) {
	s.targets = append(s.targets, w)
	s.pushes++
}

// PopTarget restores the previous target.
func (s *TargetStack) PopTarget() {
	if len(s.targets) == 0 {
		panic(fmt.Sprintf("reactivity: pop on empty target stack (pushes=%d pops=%d)", s.pushes, s.pops))
	}
	s.targets[len(s.targets)-1] = nil
	s.targets = s.targets[:len(s.targets)-1]
	s.pops++
}

// Current returns the watcher on top, or nil under a barrier or when empty.
func (s *TargetStack) Current() *Watcher {
	if s == nil || len(s.targets) == 0 {
		return nil
	}
	return s.targets[len(s.targets)-1]
}

// Depth returns the number of pushed targets.
func (s *TargetStack) Depth() int {
	if s == nil {
		return 0
	}
	return len(s.targets)
}

// Counts returns the total number of pushes and pops since creation.
func (s *TargetStack) Counts() (pushes, pops uint64) {
	if s == nil {
		return 0, 0
	}
	return s.pushes, s.pops
}
