package main

import (
	"os"

	"github.com/fatih/color"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}
