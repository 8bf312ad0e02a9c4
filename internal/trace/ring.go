package trace

import (
	"fmt"
	"io"
	"sync"
)

// RingTracer keeps the most recent events of a run so they can be printed
// after an error was re-raised.
type RingTracer struct {
	mu    sync.Mutex
	buf   []Event
	total uint64 // events ever stored; buf[total%len(buf)] is the next slot
	level Level
}

// NewRingTracer creates a ring holding up to size events.
func NewRingTracer(size int, level Level) *RingTracer {
	if size <= 0 {
		size = defaultRingSize
	}
	return &RingTracer{buf: make([]Event, size), level: level}
}

// Emit stores a copy of ev, overwriting the oldest event when full.
func (t *RingTracer) Emit(ev *Event) {
	if ev == nil || !t.level.ShouldEmit(ev.Scope) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	slot := t.total % uint64(len(t.buf))
	t.buf[slot] = *ev
	t.buf[slot].Seq = NextSeq()
	t.total++
}

// Snapshot returns the kept events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	size := uint64(len(t.buf))
	kept := min(t.total, size)
	out := make([]Event, 0, kept)
	for i := t.total - kept; i < t.total; i++ {
		out = append(out, t.buf[i%size])
	}
	return out
}

// Dropped returns how many events were overwritten.
func (t *RingTracer) Dropped() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if size := uint64(len(t.buf)); t.total > size {
		return t.total - size
	}
	return 0
}

// Dump writes a header line followed by the kept events.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	events := t.Snapshot()
	if dropped := t.Dropped(); dropped > 0 {
		if _, err := fmt.Fprintf(w, "trace: last %d events (%d earlier dropped)\n", len(events), dropped); err != nil {
			return err
		}
	} else if _, err := fmt.Fprintf(w, "trace: %d events\n", len(events)); err != nil {
		return err
	}
	for i := range events {
		if _, err := w.Write(FormatEvent(&events[i], format)); err != nil {
			return err
		}
	}
	return nil
}

// Flush implements Tracer; the ring has nothing buffered outside memory.
func (t *RingTracer) Flush() error { return nil }

// Close implements Tracer.
func (t *RingTracer) Close() error { return nil }

// Level implements Tracer.
func (t *RingTracer) Level() Level { return t.level }

// Enabled implements Tracer.
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
