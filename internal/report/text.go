package report

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize/english"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

const (
	confidenceHigh = 0.8
	confidenceLow  = 0.5
)

// TextFormatter renders reports for terminals. Color is applied per line
// unless disabled.
type TextFormatter struct {
	Color bool
}

// Write renders the whole report to w.
func (f *TextFormatter) Write(w io.Writer, rep *Report) error {
	for i, fr := range rep.Files {
		if i > 0 {
			fmt.Fprintln(w)
		}

		if err := f.writeFile(w, fr); err != nil {
			return err
		}
	}

	return nil
}

func (f *TextFormatter) writeFile(w io.Writer, fr FileReport) error {
	header := color.New(color.FgCyan, color.Bold)
	f.fprintf(header, w, "=== %s ===\n", fr.File)

	if fr.Error != "" {
		f.fprintf(color.New(color.FgRed), w, "error: %s\n", fr.Error)

		return nil
	}

	if len(fr.Lineages) == 0 {
		fmt.Fprintln(w, "no bug-fix commits found")

		return nil
	}

	fmt.Fprintf(w, "traced %s\n\n", english.Plural(len(fr.Lineages), "bug fix", "bug fixes"))

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.AppendHeader(table.Row{"Fix Ver", "Fix Type", "Introduced", "Span", "Confidence", "Status"})

	for _, rec := range fr.Lineages {
		tbl.AppendRow(table.Row{
			rec.FixVersion,
			rec.FixType,
			introducedCell(rec),
			english.Plural(rec.CommitsSpanned, "commit", "commits"),
			fmt.Sprintf("%.2f", rec.Confidence),
			f.statusCell(rec),
		})
	}

	tbl.Render()

	for _, rec := range fr.Lineages {
		if rec.ErrorMessage != "" {
			f.fprintf(color.New(color.FgYellow), w, "fix %d: %s\n", rec.FixVersion, rec.ErrorMessage)
		}
	}

	return nil
}

// fprintf writes through the color printer when enabled, plainly otherwise.
func (f *TextFormatter) fprintf(c *color.Color, w io.Writer, format string, args ...any) {
	if f.Color {
		c.Fprintf(w, format, args...)

		return
	}

	fmt.Fprintf(w, format, args...)
}

func introducedCell(rec LineageRecord) string {
	if !rec.IntroductionFound {
		return "not found"
	}

	if rec.HistoryTruncated {
		return fmt.Sprintf("v%d (history truncated)", rec.IntroductionVersion)
	}

	return fmt.Sprintf("v%d", rec.IntroductionVersion)
}

func (f *TextFormatter) statusCell(rec LineageRecord) string {
	switch {
	case !rec.TraceComplete:
		return f.sprint(color.New(color.FgRed), "incomplete")
	case rec.Confidence >= confidenceHigh:
		return f.sprint(color.New(color.FgGreen), "high")
	case rec.Confidence >= confidenceLow:
		return f.sprint(color.New(color.FgYellow), "medium")
	default:
		return f.sprint(color.New(color.FgRed), "low")
	}
}

func (f *TextFormatter) sprint(c *color.Color, s string) string {
	if f.Color {
		return c.Sprint(s)
	}

	return s
}
