package main

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	formatFlag string
	outputFlag string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "prism",
	Short: "Static source analysis CLI",
	Long: `Prism parses source files into a language-neutral AST and reports
structural metrics: cyclomatic complexity, symbol inventories, unused
imports, and syntactic call graphs.

Supports: Python`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to config file (TOML, YAML, or JSON)")
	rootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "text", "Output format: text, json, markdown, toon")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "", "Write output to file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose output")
}
