package debug

import (
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

// Console is the host's printing facility.
type Console interface {
	// Error prints to the error stream.
	Error(v ...any)
	// Warn prints to the warning stream.
	Warn(v ...any)
}

// WriterConsole prints console lines to writers.
type WriterConsole struct {
	mu    sync.Mutex
	errW  io.Writer
	warnW io.Writer
	color bool
}

// NewConsole creates a console that writes both streams to w.
// Colors are enabled when w is a terminal.
func NewConsole(w io.Writer) *WriterConsole {
	return &WriterConsole{errW: w, warnW: w, color: isTerminal(w)}
}

// StdConsole writes errors and warnings to stderr.
func StdConsole() *WriterConsole {
	return NewConsole(os.Stderr)
}

// SetColor forces colored prefixes on or off.
func (c *WriterConsole) SetColor(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.color = on
}

// Colorized reports whether prefixes are colored.
func (c *WriterConsole) Colorized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.color
}

// Error implements Console.
func (c *WriterConsole) Error(v ...any) {
	c.println(c.errW, v...)
}

// Warn implements Console.
func (c *WriterConsole) Warn(v ...any) {
	c.println(c.warnW, v...)
}

func (c *WriterConsole) println(w io.Writer, v ...any) {
	if w == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintln(w, v...)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
