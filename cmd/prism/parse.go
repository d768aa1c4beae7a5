package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/prismlabs/prism/internal/output"
	"github.com/prismlabs/prism/pkg/ast"
	"github.com/prismlabs/prism/pkg/parser"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a source file and report its structure",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	registry := parser.NewDefaultRegistry()
	result, err := registry.ParseFile(args[0])
	if err != nil {
		return err
	}

	formatter, err := newFormatter()
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() == output.FormatJSON {
		return formatter.Output(map[string]any{
			"errors":   result.Errors,
			"warnings": result.Warnings,
			"metadata": result.Metadata,
			"metrics":  ast.ExtractMetrics(result.AST),
		})
	}

	metrics := ast.ExtractMetrics(result.AST)
	rows := [][]string{
		{"Language", result.Metadata.Language},
		{"Lines", fmt.Sprintf("%d", result.Metadata.LineCount)},
		{"Nodes", fmt.Sprintf("%d", result.Metadata.NodeCount)},
		{"Max depth", fmt.Sprintf("%d", ast.MaxDepth(result.AST))},
		{"Functions", fmt.Sprintf("%d", metrics.Functions)},
		{"Classes", fmt.Sprintf("%d", metrics.Classes)},
		{"Variables", fmt.Sprintf("%d", metrics.Variables)},
		{"Parse time", fmt.Sprintf("%.2fms", result.Metadata.ParseTimeMS)},
	}
	table := output.NewTable(
		fmt.Sprintf("Parse: %s", args[0]),
		[]string{"Metric", "Value"},
		rows,
		result.Metadata,
	)
	if err := formatter.Output(table); err != nil {
		return err
	}

	if result.HasErrors() {
		color.Yellow("Syntax errors (%d):", len(result.Errors))
		for _, perr := range result.Errors {
			fmt.Printf("  %d:%d %s", perr.Line, perr.Column, perr.Message)
			if perr.Text != "" {
				fmt.Printf("  %q", truncate(perr.Text, 50))
			}
			fmt.Println()
		}
	}
	return nil
}
