package report_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/bugtrail/internal/report"
	"github.com/Sumatoshi-tech/bugtrail/pkg/lineage"
)

func TestTextFormatter_RendersTable(t *testing.T) {
	t.Parallel()

	rep := report.FromLineages("app.c", []*lineage.Lineage{sampleLineage()})

	var buf bytes.Buffer

	f := &report.TextFormatter{}
	require.NoError(t, f.Write(&buf, rep))

	out := buf.String()
	assert.Contains(t, out, "=== app.c ===")
	assert.Contains(t, out, "traced 1 bug fix")
	assert.Contains(t, out, "modification")
	assert.Contains(t, out, "v2")
	assert.Contains(t, out, "3 commits")
	assert.Contains(t, out, "0.87")
	assert.Contains(t, out, "high")
}

func TestTextFormatter_IncompleteTrace(t *testing.T) {
	t.Parallel()

	l := sampleLineage()
	l.IntroductionFound = false
	l.TraceComplete = false
	l.Matches = nil
	l.ErrorMessage = "no buggy lines identified"

	rep := report.FromLineages("app.c", []*lineage.Lineage{l})

	var buf bytes.Buffer

	f := &report.TextFormatter{}
	require.NoError(t, f.Write(&buf, rep))

	out := buf.String()
	assert.Contains(t, out, "not found")
	assert.Contains(t, out, "incomplete")
	assert.Contains(t, out, "no buggy lines identified")
}

func TestTextFormatter_TruncatedHistory(t *testing.T) {
	t.Parallel()

	l := sampleLineage()
	l.HistoryTruncated = true

	rep := report.FromLineages("app.c", []*lineage.Lineage{l})

	var buf bytes.Buffer

	f := &report.TextFormatter{}
	require.NoError(t, f.Write(&buf, rep))

	assert.Contains(t, buf.String(), "history truncated")
}

func TestTextFormatter_FileError(t *testing.T) {
	t.Parallel()

	rep := &report.Report{Files: []report.FileReport{{File: "gone.c", Error: "provider failed"}}}

	var buf bytes.Buffer

	f := &report.TextFormatter{}
	require.NoError(t, f.Write(&buf, rep))

	assert.Contains(t, buf.String(), "provider failed")
}

func TestTextFormatter_NoFixes(t *testing.T) {
	t.Parallel()

	rep := &report.Report{Files: []report.FileReport{{File: "clean.c"}}}

	var buf bytes.Buffer

	f := &report.TextFormatter{}
	require.NoError(t, f.Write(&buf, rep))

	assert.Contains(t, buf.String(), "no bug-fix commits found")
}
