package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"faultline/internal/component"
)

func TestParseModeAndEnv(t *testing.T) {
	tests := []struct {
		in      string
		mode    Mode
		wantErr bool
	}{
		{in: "", mode: Development},
		{in: "dev", mode: Development},
		{in: "Production", mode: Production},
		{in: "staging", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseMode(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if !tt.wantErr && got != tt.mode {
			t.Fatalf("ParseMode(%q) = %v, want %v", tt.in, got, tt.mode)
		}
	}

	if env, err := ParseEnv("headless"); err != nil || env != Headless {
		t.Fatalf("ParseEnv(headless) = %v, %v", env, err)
	}
	if _, err := ParseEnv("browser"); err == nil {
		t.Fatalf("expected error for unknown env")
	}
}

func TestCellUpdateIsVisible(t *testing.T) {
	cell := NewCell(Config{})
	if cell.Load().ErrorHandler != nil {
		t.Fatalf("fresh cell must have no error handler")
	}
	calls := 0
	cell.SetErrorHandler(func(error, component.Instance, string) error {
		calls++
		return nil
	})
	cell.Update(func(cfg *Config) { cfg.Silent = true })

	cfg := cell.Load()
	if !cfg.Silent {
		t.Fatalf("silent flag lost")
	}
	if err := cfg.ErrorHandler(errors.New("boom"), nil, "test"); err != nil || calls != 1 {
		t.Fatalf("handler not installed: err=%v calls=%d", err, calls)
	}
	cell.SetErrorHandler(nil)
	if cell.Load().ErrorHandler != nil {
		t.Fatalf("handler must be removable")
	}
}

func TestLoadFileAndFind(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	body := `
mode = "production"
env = "headless"
silent = true

[trace]
level = "hook"
ring_size = 64

[journal]
dir = "incidents"
`
	path := filepath.Join(root, FileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	found, ok, err := Find(nested)
	if err != nil || !ok {
		t.Fatalf("Find: ok=%v err=%v", ok, err)
	}
	if found != path {
		t.Fatalf("Find = %q, want %q", found, path)
	}

	f, err := LoadFile(found)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if f.Trace.Level != "hook" || f.Trace.RingSize != 64 || f.Journal.Dir != "incidents" {
		t.Fatalf("unexpected file: %+v", f)
	}
	var cfg Config
	if err := f.Apply(&cfg); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if cfg.Mode != Production || cfg.Env != Headless || !cfg.Silent {
		t.Fatalf("Apply result: %+v", cfg)
	}
}

func TestLoadFileRejectsUnknownMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(`mode = "turbo"`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadFile(path)
	if err == nil || !strings.Contains(err.Error(), "invalid mode") {
		t.Fatalf("expected invalid mode error, got %v", err)
	}
}
