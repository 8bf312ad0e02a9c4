// Package deferred provides promise-shaped values settled on a cooperative,
// single-threaded event loop.
//
// Continuations never run synchronously: settling a Promise (or registering a
// continuation on an already settled one) enqueues a job that runs on a later
// turn of the Loop. The Loop runs jobs in FIFO order by default; fuzz
// scheduling picks a seeded random ready job for reproducible interleavings.
//
// Neither Loop nor Promise is safe for concurrent use.
package deferred

import "math/rand"

// JobID identifies a queued job.
type JobID uint64

// Config configures loop scheduling behavior.
type Config struct {
	Fuzz bool
	Seed uint64
}

type job struct {
	id JobID
	fn func()
}

// Loop runs queued jobs one at a time.
type Loop struct {
	cfg    Config
	nextID JobID
	ready  []job
	turns  uint64
	rng    *rand.Rand
}

// NewLoop constructs a loop with the provided configuration.
func NewLoop(cfg Config) *Loop {
	l := &Loop{cfg: cfg, nextID: 1}
	if cfg.Fuzz {
		seed := cfg.Seed
		if seed == 0 {
			seed = 1
		}
		l.rng = rand.New(rand.NewSource(int64(seed))) //nolint:gosec // deterministic scheduler seed
	}
	return l
}

// Enqueue schedules fn for a later turn.
func (l *Loop) Enqueue(fn func()) JobID {
	if l == nil || fn == nil {
		return 0
	}
	id := l.nextID
	l.nextID++
	l.ready = append(l.ready, job{id: id, fn: fn})
	return id
}

// Pending returns the number of queued jobs.
func (l *Loop) Pending() int {
	if l == nil {
		return 0
	}
	return len(l.ready)
}

// Turns returns how many jobs have run.
func (l *Loop) Turns() uint64 {
	if l == nil {
		return 0
	}
	return l.turns
}

// RunOnce runs the next ready job. It returns false when the queue is empty.
// A panicking job propagates to the caller; the job is already dequeued.
func (l *Loop) RunOnce() bool {
	if l == nil || len(l.ready) == 0 {
		return false
	}
	idx := 0
	if l.cfg.Fuzz {
		idx = l.rng.Intn(len(l.ready))
	}
	next := l.ready[idx]
	copy(l.ready[idx:], l.ready[idx+1:])
	l.ready[len(l.ready)-1] = job{}
	l.ready = l.ready[:len(l.ready)-1]
	l.turns++
	next.fn()
	return true
}

// Run drains the queue, including jobs enqueued while running, and returns
// the number of jobs run.
func (l *Loop) Run() int {
	n := 0
	for l.RunOnce() {
		n++
	}
	return n
}
