package observ

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func fakeClock(step time.Duration) func() time.Time {
	cur := time.Unix(0, 0)
	return func() time.Time {
		cur = cur.Add(step)
		return cur
	}
}

func TestTimerSummary(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(2 * time.Millisecond)

	if err := tm.Track("load", func() error { return nil }); err != nil {
		t.Fatalf("track: %v", err)
	}
	boom := errors.New("boom")
	if err := tm.Track("run", func() error { return boom }); err != boom {
		t.Fatalf("track returned %v", err)
	}
	tm.End(42, "ignored")

	phases := tm.Phases()
	if len(phases) != 2 || phases[0].Dur != 2*time.Millisecond || phases[1].Note != "failed: boom" {
		t.Fatalf("phases = %+v", phases)
	}
	if tm.Total() != 4*time.Millisecond {
		t.Fatalf("total = %v", tm.Total())
	}
	out := tm.Summary()
	for _, want := range []string{"timings:", "load", "2.00 ms", "// failed: boom", "total", "4.00 ms"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}
