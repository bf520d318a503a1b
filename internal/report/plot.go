package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const (
	plotWidth  = "100%"
	plotHeight = "500px"
)

// WritePlot renders an HTML page with one confidence chart per traced file.
func WritePlot(w io.Writer, rep *Report) error {
	page := components.NewPage()
	page.PageTitle = "Bug Lineage Confidence"

	for _, fr := range rep.Files {
		if len(fr.Lineages) == 0 {
			continue
		}

		page.AddCharts(confidenceChart(fr))
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render confidence plot: %w", err)
	}

	return nil
}

// confidenceChart plots per-version match scores for every trace of one
// file, versions ascending.
func confidenceChart(fr FileReport) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  types.ThemeWesteros,
			Width:  plotWidth,
			Height: plotHeight,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fr.File,
			Subtitle: "Signature match score per scanned version",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Version"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Score", Max: 1}),
	)

	line.SetXAxis(versionLabels(fr))

	for _, rec := range fr.Lineages {
		scores := scoresByVersion(rec)

		data := make([]opts.LineData, 0, len(scores))
		for _, label := range versionLabels(fr) {
			if score, ok := scores[label]; ok {
				data = append(data, opts.LineData{Value: score})
			} else {
				data = append(data, opts.LineData{Value: nil})
			}
		}

		line.AddSeries(fmt.Sprintf("fix v%d", rec.FixVersion), data,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
		)
	}

	return line
}

// versionLabels covers every version any trace of the file matched,
// ascending.
func versionLabels(fr FileReport) []string {
	minV, maxV := 0, 0

	for _, rec := range fr.Lineages {
		for _, m := range rec.Matches {
			if minV == 0 || m.Version < minV {
				minV = m.Version
			}

			if m.Version > maxV {
				maxV = m.Version
			}
		}
	}

	if maxV == 0 {
		return nil
	}

	labels := make([]string, 0, maxV-minV+1)
	for v := minV; v <= maxV; v++ {
		labels = append(labels, strconv.Itoa(v))
	}

	return labels
}

func scoresByVersion(rec LineageRecord) map[string]float64 {
	scores := make(map[string]float64, len(rec.Matches))
	for _, m := range rec.Matches {
		scores[strconv.Itoa(m.Version)] = m.Confidence
	}

	return scores
}
