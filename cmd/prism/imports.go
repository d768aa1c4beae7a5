package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/prismlabs/prism/internal/fileproc"
	"github.com/prismlabs/prism/internal/output"
	"github.com/prismlabs/prism/pkg/analyzer"
	"github.com/prismlabs/prism/pkg/parser"
)

var importsCmd = &cobra.Command{
	Use:   "imports [path...]",
	Short: "Report unused imports",
	RunE:  runImports,
}

func init() {
	rootCmd.AddCommand(importsCmd)
}

func runImports(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
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

	type fileImports struct {
		File   string   `json:"file"`
		Unused []string `json:"unused"`
	}

	pa := analyzer.NewPythonAnalyzer()
	results, procErrs := fileproc.MapFiles(files, func(path string) (fileImports, error) {
		an, err := pa.AnalyzeFile(path)
		if err != nil {
			return fileImports{}, err
		}
		return fileImports{File: path, Unused: an.UnusedImports()}, nil
	})

	formatter, err := newFormatter()
	if err != nil {
		return err
	}
	defer formatter.Close()

	var rows [][]string
	total := 0
	for _, r := range results {
		for _, name := range r.Unused {
			rows = append(rows, []string{r.File, name})
			total++
		}
	}

	if total == 0 && formatter.Format() == output.FormatText {
		color.Green("No unused imports found")
		return reportProcErrs(procErrs)
	}

	table := output.NewTable(
		"Unused Imports",
		[]string{"File", "Import"},
		rows,
		results,
	)
	if err := formatter.Output(table); err != nil {
		return err
	}
	return reportProcErrs(procErrs)
}
