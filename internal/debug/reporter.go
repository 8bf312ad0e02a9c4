package debug

import (
	"github.com/fatih/color"

	"faultline/internal/component"
	"faultline/internal/config"
)

const (
	warnPrefix = "[Warning]:"
	tipPrefix  = "[Tip]:"
)

var (
	warnPrefixColor = color.New(color.FgRed, color.Bold)
	tipPrefixColor  = color.New(color.FgYellow, color.Bold)
)

func init() {
	// The console decides on coloring, not the process stdout.
	warnPrefixColor.EnableColor()
	tipPrefixColor.EnableColor()
}

// Reporter is the mode-aware diagnostic channel.
type Reporter struct {
	cfg     *config.Cell
	console Console
}

// NewReporter creates a Reporter. A nil console means the host has none.
func NewReporter(cfg *config.Cell, console Console) *Reporter {
	if cfg == nil {
		cfg = config.NewCell(config.Config{})
	}
	return &Reporter{cfg: cfg, console: console}
}

func (r *Reporter) development() bool {
	return r.cfg.Load().Mode == config.Development
}

// FormatComponentName is FormatComponentName in development and "" otherwise.
func (r *Reporter) FormatComponentName(vm component.Instance, includeFile bool) string {
	if !r.development() {
		return ""
	}
	return FormatComponentName(vm, includeFile)
}

// GenerateComponentTrace is GenerateComponentTrace in development and ""
// otherwise.
func (r *Reporter) GenerateComponentTrace(vm component.Instance) string {
	if !r.development() {
		return ""
	}
	return GenerateComponentTrace(vm)
}

// Warn reports msg with the ancestry of vm. The configured WarnHandler takes
// precedence over the console.
func (r *Reporter) Warn(msg string, vm component.Instance) {
	cfg := r.cfg.Load()
	if cfg.Mode != config.Development {
		return
	}
	trace := ""
	if vm != nil {
		trace = GenerateComponentTrace(vm)
	}
	if cfg.WarnHandler != nil {
		cfg.WarnHandler(msg, vm, trace)
		return
	}
	if r.console != nil && !cfg.Silent {
		r.console.Error(r.prefix(warnPrefixColor, warnPrefix) + " " + msg + trace)
	}
}

// Tip prints a development hint to the warning stream.
func (r *Reporter) Tip(msg string, vm component.Instance) {
	cfg := r.cfg.Load()
	if cfg.Mode != config.Development || r.console == nil || cfg.Silent {
		return
	}
	trace := ""
	if vm != nil {
		trace = GenerateComponentTrace(vm)
	}
	r.console.Warn(r.prefix(tipPrefixColor, tipPrefix) + " " + msg + trace)
}

func (r *Reporter) prefix(c *color.Color, text string) string {
	if cc, ok := r.console.(interface{ Colorized() bool }); ok && cc.Colorized() {
		return c.Sprint(text)
	}
	return text
}
