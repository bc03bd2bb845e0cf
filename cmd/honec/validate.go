package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/honelang/hone/internal/pipeline"
)

func validateCmd() *cobra.Command {
	var schemaName string

	cmd := &cobra.Command{
		Use:   "validate [file.hone]",
		Short: "Compile a file and validate it against a schema",
		Long: `Validate compiles the given file and checks its output against a
named schema declared anywhere in the file's dependency closure,
independent of any 'use' declaration in the source itself.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args[0], schemaName)
		},
	}

	cmd.Flags().StringVar(&schemaName, "schema", "", "Schema name to validate against (required)")
	_ = cmd.MarkFlagRequired("schema")

	return cmd
}

func runValidate(path, schemaName string) error {
	driver := pipeline.NewDriver()
	result, err := driver.Compile(path, pipeline.Config{})
	if err != nil {
		printReportErr(err)
		return err
	}

	if err := driver.ValidateAgainstSchema(path, result, schemaName); err != nil {
		printReportErr(err)
		return err
	}

	printDriverWarnings(driver.Warnings())
	fmt.Fprintf(os.Stderr, "%s %s satisfies %s\n", green("✓"), path, schemaName)
	return nil
}
