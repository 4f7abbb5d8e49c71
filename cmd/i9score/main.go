package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "i9score",
		Short: "I-9 decision and scoring engine",
		Long: `i9score scores extracted Form I-9 page catalogs.

It classifies each page, selects the governing form instance, matches the
listed identity documents against the supporting pages and reports a rubric
score with a field-level audit trail.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(scoreCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
