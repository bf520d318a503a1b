// Package main provides the entry point for the bugtrail CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/bugtrail/cmd/bugtrail/commands"
	"github.com/Sumatoshi-tech/bugtrail/pkg/version"
)

var (
	verbose bool
	quiet   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bugtrail",
		Short: "Bugtrail - line-level bug lineage tracing",
		Long: `Bugtrail diffs file versions and traces bug fixes backward
through history to find where each bug was introduced.

Commands:
  diff      Diff two files with the hybrid line matcher
  trace     Trace bug fixes backward to their introduction
  log       Show a file's commit history with bug-fix markers
  evaluate  Score the line matcher against ground-truth mappings`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output")

	// Add commands.
	rootCmd.AddCommand(commands.NewDiffCommand())
	rootCmd.AddCommand(commands.NewTraceCommand())
	rootCmd.AddCommand(commands.NewLogCommand())
	rootCmd.AddCommand(commands.NewEvaluateCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "bugtrail %s\n", version.String())
		},
	}
}
