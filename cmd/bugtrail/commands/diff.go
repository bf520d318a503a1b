// Package commands implements CLI command handlers for bugtrail.
package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/bugtrail/internal/config"
	"github.com/Sumatoshi-tech/bugtrail/internal/normalize"
	"github.com/Sumatoshi-tech/bugtrail/pkg/diff"
)

// DiffCommand holds configuration for the diff command.
type DiffCommand struct {
	configPath string
	normalized bool
}

// NewDiffCommand creates the hybrid diff command.
func NewDiffCommand() *cobra.Command {
	dc := &DiffCommand{}

	cmd := &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Diff two files with the hybrid line matcher",
		Long: "Diff two files with the hybrid line matcher and print the token stream.\n" +
			"Tokens are 1-based: o:n exact match, o~n similar match, o- deletion, n+ insertion.",
		Args: cobra.ExactArgs(2),
		RunE: dc.run,
	}

	cmd.Flags().StringVar(&dc.configPath, "config", "", "Config file path (default: .bugtrail.yaml in CWD or $HOME)")
	cmd.Flags().BoolVar(&dc.normalized, "normalize", false, "Normalize lines before matching")

	return cmd
}

func (dc *DiffCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(dc.configPath)
	if err != nil {
		return err
	}

	oldLines, err := readLines(args[0])
	if err != nil {
		return err
	}

	newLines, err := readLines(args[1])
	if err != nil {
		return err
	}

	if dc.normalized {
		oldLines = normalize.Lines(oldLines)
		newLines = normalize.Lines(newLines)
	}

	engine := engineFromConfig(cfg)
	tokens := engine.Diff(oldLines, newLines)

	_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(diff.Strings(tokens), " "))

	return err
}

// engineFromConfig builds a diff engine tuned by the config knobs.
func engineFromConfig(cfg *config.Config) *diff.Engine {
	engine := diff.NewEngine()
	engine.Threshold = cfg.Diff.Threshold
	engine.Alpha = cfg.Diff.Alpha
	engine.ContextWindow = cfg.Diff.ContextWindow
	engine.UseSimilarity = cfg.Diff.UseSimilarity

	return engine
}

// readLines reads a file and splits it into lines, dropping the trailing
// newline so the last line does not produce a phantom empty entry.
func readLines(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	content := strings.TrimSuffix(string(raw), "\n")
	if content == "" {
		return nil, nil
	}

	return strings.Split(content, "\n"), nil
}
