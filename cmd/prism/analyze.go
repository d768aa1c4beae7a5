package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/prismlabs/prism/internal/fileproc"
	"github.com/prismlabs/prism/internal/output"
	"github.com/prismlabs/prism/internal/progress"
	"github.com/prismlabs/prism/pkg/analyzer"
	"github.com/prismlabs/prism/pkg/parser"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path...]",
	Short: "Analyze functions, classes, and complexity",
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().Int("complexity-threshold", 0, "Override complexity warning threshold")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	threshold := cfg.Thresholds.CyclomaticComplexity
	if v, _ := cmd.Flags().GetInt("complexity-threshold"); v > 0 {
		threshold = v
	}

	registry := parser.NewDefaultRegistry()
	files, err := collectFiles(args, registry, cfg)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		color.Yellow("No source files found")
		return nil
	}

	pa := analyzer.NewPythonAnalyzer()
	tracker := progress.NewTracker("Analyzing...", len(files))
	analyses, procErrs := fileproc.MapFilesN(files, fileproc.Workers(cfg.Workers.Multiplier),
		func(path string) (*analyzer.Analysis, error) {
			return pa.AnalyzeFile(path)
		}, tracker.Tick)
	if procErrs != nil && procErrs.HasErrors() {
		tracker.FinishError(procErrs)
	} else {
		tracker.FinishSuccess()
	}

	formatter, err := newFormatter()
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() == output.FormatJSON {
		byFile := make(map[string]any, len(analyses))
		for _, an := range analyses {
			byFile[an.Filename] = an.ToDict()
		}
		if err := formatter.Output(byFile); err != nil {
			return err
		}
		return reportProcErrs(procErrs)
	}

	var rows [][]string
	var warnings []string
	totalFunctions := 0
	for _, an := range analyses {
		for _, entry := range an.ComplexityReport() {
			totalFunctions++
			cxStr := fmt.Sprintf("%d", entry.Complexity)
			if entry.Complexity > threshold {
				cxStr = color.RedString("%d", entry.Complexity)
				warnings = append(warnings, fmt.Sprintf("%s %s - complexity %d exceeds threshold %d",
					an.Filename, entry.Name, entry.Complexity, threshold))
			}
			rows = append(rows, []string{an.Filename, entry.Name, cxStr})
		}
	}

	table := output.NewTable(
		"Complexity Analysis",
		[]string{"File", "Function", "Complexity"},
		rows,
		nil,
	)
	table.Footer = []string{
		fmt.Sprintf("Files: %d", len(analyses)),
		fmt.Sprintf("Functions: %d", totalFunctions),
		"",
	}
	if err := formatter.Output(table); err != nil {
		return err
	}

	if len(warnings) > 0 {
		fmt.Println()
		color.Yellow("Warnings (%d):", len(warnings))
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
	}
	return reportProcErrs(procErrs)
}

func reportProcErrs(errs *fileproc.ProcessingErrors) error {
	if errs == nil || !errs.HasErrors() {
		return nil
	}
	for _, pe := range errs.Errors {
		color.Red("  %s", pe.Error())
	}
	return fmt.Errorf("%d files failed", len(errs.Errors))
}
