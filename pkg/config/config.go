// Package config loads prism configuration from TOML, YAML, or JSON
// files, falling back to defaults when none is present.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for prism. The toml tags keep
// scaffolded config files loadable through the koanf key names.
type Config struct {
	// Thresholds for analysis findings
	Thresholds ThresholdConfig `koanf:"thresholds" toml:"thresholds"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`

	// Worker pool sizing for multi-file analysis
	Workers WorkerConfig `koanf:"workers" toml:"workers"`
}

// ThresholdConfig defines metric thresholds.
type ThresholdConfig struct {
	LongFunctionLines    int `koanf:"long_function_lines" toml:"long_function_lines"`
	CyclomaticComplexity int `koanf:"cyclomatic_complexity" toml:"cyclomatic_complexity"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns   []string `koanf:"patterns" toml:"patterns"`
	Extensions []string `koanf:"extensions" toml:"extensions"`
	Dirs       []string `koanf:"dirs" toml:"dirs"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format" toml:"format"` // text, json, markdown, toon
	Color   bool   `koanf:"color" toml:"color"`
	Verbose bool   `koanf:"verbose" toml:"verbose"`
}

// WorkerConfig sizes the parallel file pipeline.
type WorkerConfig struct {
	// Multiplier over GOMAXPROCS; 0 means the default.
	Multiplier int `koanf:"multiplier" toml:"multiplier"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Thresholds: ThresholdConfig{
			LongFunctionLines:    50,
			CyclomaticComplexity: 10,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*_test.py",
				"test_*.py",
				"conftest.py",
			},
			Extensions: []string{
				".pyc",
			},
			Dirs: []string{
				".git",
				".venv",
				"venv",
				"node_modules",
				"__pycache__",
				"dist",
				"build",
			},
		},
		Output: OutputConfig{
			Format:  "text",
			Color:   true,
			Verbose: false,
		},
		Workers: WorkerConfig{
			Multiplier: 0,
		},
	}
}

// Load loads configuration from a file, layering it over defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault tries standard config locations or returns defaults.
func LoadOrDefault() *Config {
	configNames := []string{
		"prism.toml",
		"prism.yaml",
		"prism.yml",
		"prism.json",
		".prism.toml",
		".prism.yaml",
		".prism.yml",
		".prism.json",
	}

	for _, name := range configNames {
		if _, err := os.Stat(name); err == nil {
			if cfg, err := Load(name); err == nil {
				return cfg
			}
		}
	}
	return DefaultConfig()
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) ||
			strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}

	ext := filepath.Ext(path)
	for _, excludeExt := range c.Exclude.Extensions {
		if ext == excludeExt {
			return true
		}
	}

	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}
