package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/bugtrail/internal/history"
)

// NewLogCommand creates the commit history display command.
func NewLogCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "log <commit-log> <file>",
		Short: "Show a file's commit history with bug-fix markers",
		Long: "Parse a commit log and print the given file's history,\n" +
			"one version per line, marking the commits classified as bug fixes.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			commitLog, err := history.NewCommitLog(args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), commitLog.Summary())

			return nil
		},
	}
}
