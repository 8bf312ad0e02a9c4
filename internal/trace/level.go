package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	// LevelOff disables tracing.
	LevelOff      Level = iota // no tracing
	LevelError                 // terminal decisions only
	LevelDispatch              // handleError + sink
	LevelHook                  // every recovery hook
	LevelDebug                 // everything including guarded invocations
)

// String returns the string representation of Level.
func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelError:
		return "error"
	case LevelDispatch:
		return "dispatch"
	case LevelHook:
		return "hook"
	case LevelDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "off", "":
		return LevelOff, nil
	case "error":
		return LevelError, nil
	case "dispatch":
		return LevelDispatch, nil
	case "hook":
		return LevelHook, nil
	case "debug":
		return LevelDebug, nil
	default:
		return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|error|dispatch|hook|debug)", s)
	}
}

// ShouldEmit returns true if the given scope should emit at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelOff:
		return false
	case LevelError:
		return scope <= ScopeSink
	case LevelDispatch:
		return scope <= ScopeDispatch
	case LevelHook:
		return scope <= ScopeHook
	case LevelDebug:
		return true
	}
	return false
}
