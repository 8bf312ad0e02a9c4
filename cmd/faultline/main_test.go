package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCollectScenarioPaths(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.toml", "a.toml", "faultline.toml", "notes.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("\n"), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.toml"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	extra := filepath.Join(dir, "notes.md")

	paths, err := collectScenarioPaths([]string{dir, extra})
	if err != nil {
		t.Fatalf("collectScenarioPaths: %v", err)
	}
	want := []string{filepath.Join(dir, "a.toml"), filepath.Join(dir, "b.toml"), extra}
	if strings.Join(paths, ",") != strings.Join(want, ",") {
		t.Fatalf("paths = %v, want %v", paths, want)
	}

	if _, err := collectScenarioPaths([]string{filepath.Join(dir, "missing")}); err == nil {
		t.Fatalf("expected stat error")
	}
	empty := t.TempDir()
	if _, err := collectScenarioPaths([]string{empty}); err == nil || !strings.Contains(err.Error(), "no scenario files") {
		t.Fatalf("err = %v", err)
	}
}

func TestRenderVersionJSON(t *testing.T) {
	var buf bytes.Buffer
	info := versionInfo{Version: "\x1b[31m1\x1b[0m.2.3", GitCommit: "abc123"}
	if err := renderVersionJSON(&buf, info, versionOptions{format: "json", showHash: true, showDate: true}); err != nil {
		t.Fatalf("render: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Tool != "faultline" || payload.Version != "1.2.3" || payload.GitCommit != "abc123" || payload.BuildDate != "unknown" || payload.GitMessage != "" {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestRenderVersionPretty(t *testing.T) {
	var buf bytes.Buffer
	renderVersionPretty(&buf, versionInfo{Version: "0.3.0"}, versionOptions{})
	out := buf.String()
	if !strings.HasPrefix(out, "faultline 0.3.0 - ") || !strings.Contains(out, "--full") {
		t.Fatalf("output = %q", out)
	}
}
