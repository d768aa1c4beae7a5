package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prismlabs/prism/pkg/config"
	"github.com/prismlabs/prism/pkg/parser"
)

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestParseCommandJSON(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "app.py", "def f(x):\n    if x:\n        return 1\n    return 0\n")
	out := filepath.Join(dir, "parse.json")

	if err := runCommand(t, "parse", src, "-f", "json", "-o", out); err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Metadata parser.Metadata `json:"metadata"`
		Errors   []parser.ParseError
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if decoded.Metadata.Language != "python" {
		t.Errorf("language = %q", decoded.Metadata.Language)
	}
	if decoded.Metadata.LineCount != 4 {
		t.Errorf("line count = %d", decoded.Metadata.LineCount)
	}
	if len(decoded.Errors) != 0 {
		t.Errorf("unexpected errors: %v", decoded.Errors)
	}
}

func TestStatsCommandJSON(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "app.py", "def f():\n    pass\n\ndef g():\n    pass\n")
	out := filepath.Join(dir, "stats.json")

	if err := runCommand(t, "stats", src, "-f", "json", "-o", out); err != nil {
		t.Fatalf("stats failed: %v", err)
	}

	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var byFile map[string]map[string]any
	if err := json.Unmarshal(raw, &byFile); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	stats, ok := byFile[src]
	if !ok {
		t.Fatalf("no stats for %s in %v", src, byFile)
	}
	if got := stats["num_functions"].(float64); got != 2 {
		t.Errorf("num_functions = %v", got)
	}
}

func TestParseCommandMissingFile(t *testing.T) {
	if err := runCommand(t, "parse", filepath.Join(t.TempDir(), "absent.py"), "-f", "text", "-o", ""); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "conf", "prism.toml")

	if err := runCommand(t, "init", "-o", cfgPath); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	// The scaffolded file loads back to the defaults.
	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("scaffolded config does not load: %v", err)
	}
	if cfg.Thresholds.LongFunctionLines != 50 {
		t.Errorf("long_function_lines = %d", cfg.Thresholds.LongFunctionLines)
	}
	if cfg.Output.Format != "text" {
		t.Errorf("format = %q", cfg.Output.Format)
	}

	// Without --force a second run refuses to overwrite.
	if err := runCommand(t, "init", "-o", cfgPath); err == nil {
		t.Error("expected error for existing config file")
	}
	if err := runCommand(t, "init", "-o", cfgPath, "--force"); err != nil {
		t.Errorf("init --force failed: %v", err)
	}
}

func TestGenerateDefaultConfig(t *testing.T) {
	content, err := generateDefaultConfig()
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"[thresholds]", "long_function_lines", "[exclude]", "__pycache__"} {
		if !strings.Contains(content, want) {
			t.Errorf("config missing %q:\n%s", want, content)
		}
	}
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "a.py", "x = 1\n")
	writeSource(t, dir, "b.py", "y = 2\n")
	writeSource(t, dir, "notes.txt", "n/a\n")

	registry := parser.NewDefaultRegistry()
	cfg := config.DefaultConfig()

	files, err := collectFiles([]string{dir}, registry, cfg)
	if err != nil {
		t.Fatalf("collectFiles() error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("files = %v", files)
	}

	// Explicit file paths pass through without extension filtering.
	single, err := collectFiles([]string{filepath.Join(dir, "a.py")}, registry, cfg)
	if err != nil {
		t.Fatalf("collectFiles() error: %v", err)
	}
	if len(single) != 1 {
		t.Errorf("single = %v", single)
	}

	if _, err := collectFiles([]string{filepath.Join(dir, "missing")}, registry, cfg); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("a very long snippet", 10); got != "a very ..." {
		t.Errorf("truncate = %q", got)
	}
}
