package trace

import "errors"

// teeTracer writes every event to a stream and keeps it in a ring, so a
// traced run can still dump its tail after a re-raise.
type teeTracer struct {
	stream *StreamTracer
	ring   *RingTracer
	level  Level
}

func (t *teeTracer) Emit(ev *Event) {
	t.stream.Emit(ev)
	t.ring.Emit(ev)
}

func (t *teeTracer) Flush() error { return t.stream.Flush() }

func (t *teeTracer) Close() error {
	return errors.Join(t.stream.Close(), t.ring.Close())
}

func (t *teeTracer) Level() Level { return t.level }

func (t *teeTracer) Enabled() bool { return t.level > LevelOff }

type nopTracer struct{}

func (nopTracer) Emit(*Event)   {}
func (nopTracer) Flush() error  { return nil }
func (nopTracer) Close() error  { return nil }
func (nopTracer) Level() Level  { return LevelOff }
func (nopTracer) Enabled() bool { return false }

// Nop discards every event.
var Nop Tracer = nopTracer{}
