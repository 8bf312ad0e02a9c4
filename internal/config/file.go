package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up by Find.
const FileName = "faultline.toml"

// File is the TOML form of the configuration.
type File struct {
	Mode    string      `toml:"mode"`
	Env     string      `toml:"env"`
	Silent  bool        `toml:"silent"`
	Trace   TraceFile   `toml:"trace"`
	Journal JournalFile `toml:"journal"`

	Path string `toml:"-"`
}

// TraceFile configures the dispatch tracer.
type TraceFile struct {
	Level    string `toml:"level"`
	Mode     string `toml:"mode"`
	Output   string `toml:"output"`
	RingSize int    `toml:"ring_size"`
}

// JournalFile configures the incident journal.
type JournalFile struct {
	Dir string `toml:"dir"`
}

// Find walks up from startDir looking for faultline.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadFile parses and validates a configuration file.
func LoadFile(path string) (*File, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if _, err := ParseMode(f.Mode); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if _, err := ParseEnv(f.Env); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if f.Trace.RingSize < 0 {
		return nil, fmt.Errorf("%s: trace.ring_size must not be negative", path)
	}
	f.Path = path
	return &f, nil
}

// Apply copies the file settings onto cfg. Handlers are left untouched.
func (f *File) Apply(cfg *Config) error {
	if f == nil || cfg == nil {
		return nil
	}
	mode, err := ParseMode(f.Mode)
	if err != nil {
		return err
	}
	env, err := ParseEnv(f.Env)
	if err != nil {
		return err
	}
	cfg.Mode = mode
	cfg.Env = env
	cfg.Silent = f.Silent
	return nil
}
