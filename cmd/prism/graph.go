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

var graphCmd = &cobra.Command{
	Use:     "graph [path...]",
	Aliases: []string{"calls"},
	Short:   "Build a syntactic call graph (Mermaid output)",
	RunE:    runGraph,
}

func init() {
	graphCmd.Flags().Bool("metrics", false, "Include PageRank and cycle metrics")
	rootCmd.AddCommand(graphCmd)
}

func runGraph(cmd *cobra.Command, args []string) error {
	includeMetrics, _ := cmd.Flags().GetBool("metrics")

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

	pa := analyzer.NewPythonAnalyzer()
	tracker := progress.NewTracker("Building call graph...", len(files))
	analyses, procErrs := fileproc.MapFilesN(files, fileproc.Workers(cfg.Workers.Multiplier),
		func(path string) (*analyzer.Analysis, error) {
			return pa.AnalyzeFile(path)
		}, tracker.Tick)
	if procErrs != nil && procErrs.HasErrors() {
		tracker.FinishError(procErrs)
	} else {
		tracker.FinishSuccess()
	}

	graph := analyzer.BuildCallGraph(analyses...)

	formatter, err := newFormatter()
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() == output.FormatJSON {
		data := map[string]any{
			"nodes": graph.Nodes,
			"edges": graph.Edges,
		}
		if includeMetrics {
			data["ranks"] = graph.Rank()
			data["cycles"] = graph.Cycles()
			data["density"] = graph.Density()
		}
		if err := formatter.Output(data); err != nil {
			return err
		}
		return reportProcErrs(procErrs)
	}

	w := formatter.Writer()
	fmt.Fprintln(w, "```mermaid")
	fmt.Fprintln(w, "graph TD")
	for _, node := range graph.Nodes {
		fmt.Fprintf(w, "    %s[%s]\n", sanitizeID(node), node)
	}
	for _, edge := range graph.Edges {
		fmt.Fprintf(w, "    %s --> %s\n", sanitizeID(edge.From), sanitizeID(edge.To))
	}
	fmt.Fprintln(w, "```")

	if includeMetrics {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Nodes: %d, Edges: %d, Density: %.4f\n",
			len(graph.Nodes), len(graph.Edges), graph.Density())

		cycles := graph.Cycles()
		if len(cycles) > 0 {
			color.Yellow("Cycles (%d):", len(cycles))
			for _, cycle := range cycles {
				fmt.Fprintf(w, "  %v\n", cycle)
			}
		}

		ranks := graph.Rank()
		if len(ranks) > 0 {
			fmt.Fprintln(w, "Top functions by PageRank:")
			for i, r := range ranks {
				if i >= 5 {
					break
				}
				fmt.Fprintf(w, "  %s: %.4f (in: %d, out: %d)\n",
					r.Name, r.PageRank, r.InDegree, r.OutDegree)
			}
		}
	}
	return reportProcErrs(procErrs)
}

func sanitizeID(id string) string {
	result := make([]rune, 0, len(id))
	for _, c := range id {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}
	return string(result)
}
