package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/prismlabs/prism/internal/output"
	"github.com/prismlabs/prism/pkg/ast"
	"github.com/prismlabs/prism/pkg/parser"
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols <file>",
	Short: "List declared symbols and unused variables",
	Args:  cobra.ExactArgs(1),
	RunE:  runSymbols,
}

func init() {
	symbolsCmd.Flags().Int("at-line", 0, "Show the node covering the given line")
	rootCmd.AddCommand(symbolsCmd)
}

func runSymbols(cmd *cobra.Command, args []string) error {
	registry := parser.NewDefaultRegistry()
	result, err := registry.ParseFile(args[0])
	if err != nil {
		return err
	}

	symbols := ast.BuildSymbolTable(result.AST)
	unused := ast.FindUnusedVariables(result.AST)

	formatter, err := newFormatter()
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() == output.FormatJSON {
		byName := make(map[string]any, symbols.Len())
		for _, name := range symbols.Names() {
			byName[name] = symbols.Entries(name)
		}
		return formatter.Output(map[string]any{
			"symbols":          byName,
			"unused_variables": unused,
		})
	}

	var rows [][]string
	for _, name := range symbols.SortedNames() {
		for _, entry := range symbols.Entries(name) {
			loc := ""
			if entry.Loc != nil {
				loc = fmt.Sprintf("%d:%d", entry.Loc.Start.Line, entry.Loc.Start.Column)
			}
			rows = append(rows, []string{name, string(entry.Kind), loc, string(entry.Context)})
		}
	}
	table := output.NewTable(
		fmt.Sprintf("Symbols: %s", args[0]),
		[]string{"Name", "Kind", "Location", "Context"},
		rows,
		nil,
	)
	if err := formatter.Output(table); err != nil {
		return err
	}

	if len(unused) > 0 {
		color.Yellow("Unused variables (%d):", len(unused))
		for _, name := range unused {
			fmt.Printf("  - %s\n", name)
		}
	}

	if line, _ := cmd.Flags().GetInt("at-line"); line > 0 {
		node := ast.FindNodeAtLine(result.AST, line)
		if node == nil {
			color.Yellow("No node covers line %d", line)
		} else {
			fmt.Printf("Line %d: %s", line, node.Type())
			if named, ok := node.(ast.Named); ok {
				fmt.Printf(" (%s)", named.NodeName())
			}
			fmt.Println()
		}
	}
	return nil
}
