// Package main implements the hone compiler CLI.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"

	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "honec",
		Short:   "honec - the hone configuration language compiler",
		Version: version,
		Long: `honec compiles hone source files into plain JSON, YAML, TOML, or
.env data, resolving imports, applying schema and policy checks, and
resolving secrets, deterministically and hermetically.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(compileCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(cacheCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func printReportErr(err error) {
	fmt.Fprintf(os.Stderr, "%s %v\n", red("error:"), err)
}
