package commands

import (
	"fmt"

	"github.com/dustin/go-humanize/english"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/bugtrail/internal/evaluate"
)

// NewEvaluateCommand creates the matcher evaluation command.
func NewEvaluateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate <dir>",
		Short: "Score the line matcher against ground-truth mappings",
		Long: "Run the line matcher over a dataset directory of test cases\n" +
			"and report per-case and aggregate precision, recall and F1.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := evaluate.EvaluateDataset(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "evaluated %s\n\n", english.Plural(len(result.Cases), "test case", ""))

			tbl := table.NewWriter()
			tbl.SetOutputMirror(out)
			tbl.SetStyle(table.StyleLight)
			tbl.Style().Options.SeparateRows = false
			tbl.AppendHeader(table.Row{"Case", "Correct", "Predicted", "Truth", "Precision", "Recall", "F1"})

			for _, c := range result.Cases {
				tbl.AppendRow(table.Row{
					c.ID, c.Correct, c.Predicted, c.GroundTruth,
					fmt.Sprintf("%.3f", c.Precision()),
					fmt.Sprintf("%.3f", c.Recall()),
					fmt.Sprintf("%.3f", c.F1()),
				})
			}

			tbl.AppendFooter(table.Row{
				"total", result.Correct, result.Predicted, result.GroundTruth,
				fmt.Sprintf("%.3f", result.Precision()),
				fmt.Sprintf("%.3f", result.Accuracy()),
				fmt.Sprintf("%.3f", result.F1()),
			})

			tbl.Render()

			return nil
		},
	}
}
