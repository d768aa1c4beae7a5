package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prismlabs/prism/internal/output"
	"github.com/prismlabs/prism/internal/progress"
	"github.com/prismlabs/prism/internal/scanner"
	"github.com/prismlabs/prism/pkg/config"
	"github.com/prismlabs/prism/pkg/parser"
)

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	return config.LoadOrDefault(), nil
}

func newFormatter() (*output.Formatter, error) {
	return output.NewFormatter(output.ParseFormat(formatFlag), outputFlag, true)
}

// collectFiles resolves positional args (files or directories,
// defaulting to ".") into the analyzable file set.
func collectFiles(args []string, registry *parser.Registry, cfg *config.Config) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}
	scan := scanner.New(registry, cfg)
	spinner := progress.NewSpinner("Scanning...")

	var files []string
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			spinner.FinishError(err)
			return nil, fmt.Errorf("invalid path %s: %w", arg, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			spinner.FinishError(err)
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, abs)
			continue
		}
		found, err := scan.Scan(abs)
		if err != nil {
			spinner.FinishError(err)
			return nil, fmt.Errorf("failed to scan directory %s: %w", arg, err)
		}
		files = append(files, found...)
		spinner.Tick()
	}
	spinner.FinishSuccess()
	return files, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
