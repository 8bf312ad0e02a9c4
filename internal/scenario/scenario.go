// Package scenario loads TOML descriptions of a component tree, its recovery
// hooks and one failure, and replays them through the error pipeline.
//
// A scenario file looks like:
//
//	name = "child hook swallows"
//
//	[[component]]
//	id = "root"
//
//	[[component]]
//	id = "list"
//	parent = "root"
//	name = "todo-list"
//
//	[[hook]]
//	component = "list"
//	action = "stop"
//
//	[failure]
//	component = "list"
//	info = "render function"
//	message = "boom"
//
//	[config]
//	error_handler = "observe"
//
//	[expect]
//	outcome = "suppressed"
//
// The same layout is accepted as YAML in files ending in .yaml or .yml.
package scenario

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"faultline/internal/config"
)

// Hook actions.
const (
	ActionPropagate = "propagate"
	ActionStop      = "stop"
	ActionFail      = "fail"
	ActionPanic     = "panic"
)

// Failure modes.
const (
	ModeSync  = "sync"
	ModePanic = "panic"
	ModeAsync = "async"
)

// Global error handler behaviours.
const (
	SinkNone    = "none"
	SinkObserve = "observe"
	SinkFail    = "fail"
	SinkRethrow = "rethrow"
)

// File is a parsed scenario.
type File struct {
	Name       string          `toml:"name" yaml:"name"`
	Components []ComponentDecl `toml:"component" yaml:"component"`
	Hooks      []HookDecl      `toml:"hook" yaml:"hook"`
	Failure    FailureDecl     `toml:"failure" yaml:"failure"`
	Config     ConfigDecl      `toml:"config" yaml:"config"`
	Expect     Expectations    `toml:"expect" yaml:"expect"`

	Path string `toml:"-" yaml:"-"`
}

// ComponentDecl declares one instance. Instances sharing a Kind are the same
// component definition; an empty Kind gives the instance a kind of its own.
type ComponentDecl struct {
	ID     string `toml:"id" yaml:"id"`
	Parent string `toml:"parent" yaml:"parent"`
	Name   string `toml:"name" yaml:"name"`
	Tag    string `toml:"tag" yaml:"tag"`
	File   string `toml:"file" yaml:"file"`
	Kind   string `toml:"kind" yaml:"kind"`
}

// HookDecl attaches a recovery hook to a component.
type HookDecl struct {
	Component string `toml:"component" yaml:"component"`
	Action    string `toml:"action" yaml:"action"`
	Message   string `toml:"message" yaml:"message"`
}

// FailureDecl describes the error raised by user code.
type FailureDecl struct {
	Component string `toml:"component" yaml:"component"`
	Info      string `toml:"info" yaml:"info"`
	Message   string `toml:"message" yaml:"message"`
	Mode      string `toml:"mode" yaml:"mode"`
}

// ConfigDecl is the global configuration for the run.
type ConfigDecl struct {
	Mode         string `toml:"mode" yaml:"mode"`
	Env          string `toml:"env" yaml:"env"`
	Silent       bool   `toml:"silent" yaml:"silent"`
	ErrorHandler string `toml:"error_handler" yaml:"error_handler"`
}

// Expectations holds optional assertions checked after the run.
type Expectations struct {
	Outcome   string `toml:"outcome" yaml:"outcome"`
	SinkCalls *int   `toml:"sink_calls" yaml:"sink_calls"`
	HookCalls *int   `toml:"hook_calls" yaml:"hook_calls"`
}

// Load reads and validates a scenario file. Files ending in .yaml or .yml
// are decoded as YAML, everything else as TOML.
func Load(path string) (*File, error) {
	if IsYAML(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return ParseYAML(path, data)
	}
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	f.Path = path
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &f, nil
}

// Parse decodes a scenario from TOML text.
func Parse(name, data string) (*File, error) {
	var f File
	if _, err := toml.Decode(data, &f); err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", name, err)
	}
	f.Path = name
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &f, nil
}

// ParseYAML decodes a scenario from YAML. Unknown keys are rejected.
func ParseYAML(name string, data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%s: failed to parse YAML: %w", name, err)
	}
	f.Path = name
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &f, nil
}

// IsYAML reports whether path names a YAML scenario.
func IsYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// IsScenarioFile reports whether path has a scenario extension.
func IsScenarioFile(path string) bool {
	return IsYAML(path) || strings.EqualFold(filepath.Ext(path), ".toml")
}

// Title is the scenario name, falling back to its path.
func (f *File) Title() string {
	if strings.TrimSpace(f.Name) != "" {
		return f.Name
	}
	return f.Path
}

// ApplyDefaults fills the [config] fields the scenario leaves unset from d.
// Silent is sticky: either side can turn it on.
func (f *File) ApplyDefaults(d ConfigDecl) {
	if f.Config.Mode == "" {
		f.Config.Mode = d.Mode
	}
	if f.Config.Env == "" {
		f.Config.Env = d.Env
	}
	f.Config.Silent = f.Config.Silent || d.Silent
}

func (f *File) validate() error {
	if len(f.Components) == 0 {
		return fmt.Errorf("missing [[component]]")
	}
	seen := make(map[string]bool, len(f.Components))
	roots := 0
	for i := range f.Components {
		c := &f.Components[i]
		c.ID = strings.TrimSpace(c.ID)
		if c.ID == "" {
			return fmt.Errorf("component #%d: missing id", i+1)
		}
		if seen[c.ID] {
			return fmt.Errorf("component %q: duplicate id", c.ID)
		}
		switch {
		case c.Parent == "":
			roots++
		case !seen[c.Parent]:
			return fmt.Errorf("component %q: parent %q must be declared before it", c.ID, c.Parent)
		}
		seen[c.ID] = true
	}
	if roots != 1 {
		return fmt.Errorf("want exactly one root component, got %d", roots)
	}
	if f.Components[0].Parent != "" {
		return fmt.Errorf("component %q: the root must be declared first", f.Components[0].ID)
	}

	for i := range f.Hooks {
		h := &f.Hooks[i]
		if !seen[h.Component] {
			return fmt.Errorf("hook #%d: unknown component %q", i+1, h.Component)
		}
		h.Action = strings.ToLower(strings.TrimSpace(h.Action))
		if h.Action == "" {
			h.Action = ActionPropagate
		}
		switch h.Action {
		case ActionPropagate, ActionStop, ActionFail, ActionPanic:
		default:
			return fmt.Errorf("hook #%d: invalid action %q (expected: propagate|stop|fail|panic)", i+1, h.Action)
		}
	}

	fl := &f.Failure
	if fl.Component == "" {
		fl.Component = f.Components[len(f.Components)-1].ID
	} else if !seen[fl.Component] {
		return fmt.Errorf("[failure]: unknown component %q", fl.Component)
	}
	if fl.Info == "" {
		fl.Info = "render function"
	}
	if fl.Message == "" {
		fl.Message = "scenario failure"
	}
	fl.Mode = strings.ToLower(strings.TrimSpace(fl.Mode))
	if fl.Mode == "" {
		fl.Mode = ModeSync
	}
	switch fl.Mode {
	case ModeSync, ModePanic, ModeAsync:
	default:
		return fmt.Errorf("[failure]: invalid mode %q (expected: sync|panic|async)", fl.Mode)
	}

	cfg := &f.Config
	if _, err := config.ParseMode(cfg.Mode); err != nil {
		return fmt.Errorf("[config]: %w", err)
	}
	if _, err := config.ParseEnv(cfg.Env); err != nil {
		return fmt.Errorf("[config]: %w", err)
	}
	cfg.ErrorHandler = strings.ToLower(strings.TrimSpace(cfg.ErrorHandler))
	if cfg.ErrorHandler == "" {
		cfg.ErrorHandler = SinkNone
	}
	switch cfg.ErrorHandler {
	case SinkNone, SinkObserve, SinkFail, SinkRethrow:
	default:
		return fmt.Errorf("[config]: invalid error_handler %q (expected: none|observe|fail|rethrow)", cfg.ErrorHandler)
	}

	if o := f.Expect.Outcome; o != "" {
		if _, err := ParseOutcome(o); err != nil {
			return fmt.Errorf("[expect]: %w", err)
		}
	}
	return nil
}
