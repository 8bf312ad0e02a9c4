package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	// KindSpanBegin marks the start of a logical operation.
	KindSpanBegin Kind = iota + 1 // span start
	// KindSpanEnd marks the end of a logical operation.
	KindSpanEnd // span end
	// KindPoint represents an instant event.
	KindPoint // instant event
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope indicates the granularity level of the event.
// Lower numeric values are emitted at lower levels.
type Scope uint8

const (
	// ScopeSink covers the global sink and the log/re-raise decision.
	ScopeSink Scope = iota + 1
	// ScopeDispatch covers a single handleError call.
	ScopeDispatch
	// ScopeHook covers a single recovery hook.
	ScopeHook
	ScopeInvoke // guarded invocation of user code (most detailed)
)

// String returns the string representation of Scope.
func (s Scope) String() string {
	switch s {
	case ScopeSink:
		return "sink"
	case ScopeDispatch:
		return "dispatch"
	case ScopeHook:
		return "hook"
	case ScopeInvoke:
		return "invoke"
	default:
		return "unknown"
	}
}

// Event represents a single trace event.
type Event struct {
	Time     time.Time         // wall-clock timestamp
	Seq      uint64            // global sequence number (monotonic)
	Kind     Kind              // event kind
	Scope    Scope             // granularity level
	SpanID   uint64            // unique span identifier
	ParentID uint64            // parent span (0 if root)
	GID      uint64            // goroutine ID
	Name     string            // e.g. "handleError", "hook", "logError"
	Detail   string            // optional detail message
	Extra    map[string]string // extensible key-value pairs
}
