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

var statsCmd = &cobra.Command{
	Use:   "stats [path...]",
	Short: "Aggregate per-file statistics",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().Int("long-threshold", 0, "Override long-function line threshold")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	longThreshold := cfg.Thresholds.LongFunctionLines
	if v, _ := cmd.Flags().GetInt("long-threshold"); v > 0 {
		longThreshold = v
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
	tracker := progress.NewTracker("Collecting statistics...", len(files))
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
		byFile := make(map[string]analyzer.Statistics, len(analyses))
		for _, an := range analyses {
			byFile[an.Filename] = an.Statistics()
		}
		if err := formatter.Output(byFile); err != nil {
			return err
		}
		return reportProcErrs(procErrs)
	}

	var rows [][]string
	totals := analyzer.Statistics{}
	var longFns []string
	for _, an := range analyses {
		st := an.Statistics()
		totals.TotalLines += st.TotalLines
		totals.NonEmptyLines += st.NonEmptyLines
		totals.NumFunctions += st.NumFunctions
		totals.NumClasses += st.NumClasses
		totals.NumImports += st.NumImports
		totals.NumGlobals += st.NumGlobals
		totals.FunctionsWithoutDocstrings += st.FunctionsWithoutDocstrings
		if st.MaxComplexity > totals.MaxComplexity {
			totals.MaxComplexity = st.MaxComplexity
		}

		rows = append(rows, []string{
			an.Filename,
			fmt.Sprintf("%d", st.TotalLines),
			fmt.Sprintf("%d", st.NumFunctions),
			fmt.Sprintf("%d", st.NumClasses),
			fmt.Sprintf("%.1f", st.AvgComplexity),
			fmt.Sprintf("%d", st.MaxComplexity),
		})

		for _, fn := range an.LongFunctions(longThreshold) {
			longFns = append(longFns, fmt.Sprintf("%s:%d %s (%d lines)",
				an.Filename, fn.LineStart, fn.Name, fn.LineCount()))
		}
	}

	table := output.NewTable(
		"Source Statistics",
		[]string{"File", "Lines", "Functions", "Classes", "Avg Cx", "Max Cx"},
		rows,
		nil,
	)
	table.Footer = []string{
		fmt.Sprintf("Files: %d", len(analyses)),
		fmt.Sprintf("Lines: %d", totals.TotalLines),
		fmt.Sprintf("Functions: %d", totals.NumFunctions),
		fmt.Sprintf("Classes: %d", totals.NumClasses),
		"",
		fmt.Sprintf("Max: %d", totals.MaxComplexity),
	}
	if err := formatter.Output(table); err != nil {
		return err
	}

	if len(longFns) > 0 {
		fmt.Println()
		color.Yellow("Functions over %d lines (%d):", longThreshold, len(longFns))
		for _, fn := range longFns {
			fmt.Printf("  - %s\n", fn)
		}
	}
	return reportProcErrs(procErrs)
}
