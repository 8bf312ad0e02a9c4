// Package config holds the process-wide error configuration.
//
// The host owns a Cell and may swap handlers or flags at any time; the error
// pipeline reads a snapshot on every event. File is the on-disk TOML form
// used by the CLI.
package config

import (
	"fmt"
	"strings"
	"sync"

	"faultline/internal/component"
)

// Mode selects development or production behaviour.
type Mode uint8

const (
	// Development enables warnings and ancestry traces.
	Development Mode = iota
	// Production turns the trace machinery and warnings into no-ops.
	Production
)

// String returns the string representation of Mode.
func (m Mode) String() string {
	switch m {
	case Development:
		return "development"
	case Production:
		return "production"
	default:
		return "unknown"
	}
}

// ParseMode converts a string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "development", "dev":
		return Development, nil
	case "production", "prod":
		return Production, nil
	default:
		return Development, fmt.Errorf("invalid mode: %q (expected: development|production)", s)
	}
}

// Env describes the host the pipeline runs in.
type Env uint8

const (
	// Console hosts print unhandled errors and carry on.
	Console Env = iota
	// Headless hosts have no console; unhandled errors are re-raised.
	Headless
)

// String returns the string representation of Env.
func (e Env) String() string {
	switch e {
	case Console:
		return "console"
	case Headless:
		return "headless"
	default:
		return "unknown"
	}
}

// ParseEnv converts a string to an Env.
func ParseEnv(s string) (Env, error) {
	switch strings.ToLower(s) {
	case "", "console":
		return Console, nil
	case "headless":
		return Headless, nil
	default:
		return Console, fmt.Errorf("invalid env: %q (expected: console|headless)", s)
	}
}

// ErrorHandler is the global error sink. A returned error, or a panic, means
// the sink itself failed.
type ErrorHandler func(err error, vm component.Instance, info string) error

// WarnHandler receives development warnings instead of the console.
type WarnHandler func(msg string, vm component.Instance, trace string)

// Config is a snapshot of the global error configuration.
type Config struct {
	ErrorHandler ErrorHandler
	WarnHandler  WarnHandler
	Silent       bool // suppress console warnings and error prints
	Mode         Mode
	Env          Env
}

// Cell is the host-owned mutable holder of Config.
type Cell struct {
	mu  sync.RWMutex
	cfg Config
}

// NewCell creates a cell holding cfg.
func NewCell(cfg Config) *Cell {
	return &Cell{cfg: cfg}
}

// Load returns the current configuration.
func (c *Cell) Load() Config {
	if c == nil {
		return Config{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg
}

// Store replaces the configuration.
func (c *Cell) Store(cfg Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg
}

// Update applies fn to the configuration under the write lock.
func (c *Cell) Update(fn func(*Config)) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.cfg)
}

// SetErrorHandler installs h as the global error sink. Pass nil to remove it.
func (c *Cell) SetErrorHandler(h ErrorHandler) {
	c.Update(func(cfg *Config) { cfg.ErrorHandler = h })
}

// SetWarnHandler installs h as the warning sink. Pass nil to restore the console.
func (c *Cell) SetWarnHandler(h WarnHandler) {
	c.Update(func(cfg *Config) { cfg.WarnHandler = h })
}
