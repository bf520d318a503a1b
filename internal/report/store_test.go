package report_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/bugtrail/internal/report"
	"github.com/Sumatoshi-tech/bugtrail/pkg/lineage"
)

func TestYAMLRoundTrip(t *testing.T) {
	t.Parallel()

	rep := report.FromLineages("app.c", []*lineage.Lineage{sampleLineage()})

	var buf bytes.Buffer

	require.NoError(t, report.WriteYAML(&buf, rep))
	assert.Contains(t, buf.String(), "fix_version: 5")
	assert.Contains(t, buf.String(), "fix_commit_message")

	got, err := report.ReadYAML(&buf)
	require.NoError(t, err)

	require.Len(t, got.Files, 1)
	assert.Equal(t, rep.Files[0].Lineages, got.Files[0].Lineages)
}

func TestSaveLoad_PlainYAML(t *testing.T) {
	t.Parallel()

	rep := report.FromLineages("app.c", []*lineage.Lineage{sampleLineage()})
	path := filepath.Join(t.TempDir(), "report.yaml")

	require.NoError(t, report.Save(path, rep))

	got, err := report.Load(path)
	require.NoError(t, err)
	assert.Equal(t, rep.Files, got.Files)
}

func TestSaveLoad_Archive(t *testing.T) {
	t.Parallel()

	rep := report.FromLineages("app.c", []*lineage.Lineage{sampleLineage()})
	path := filepath.Join(t.TempDir(), "report.yaml.lz4")

	require.NoError(t, report.Save(path, rep))

	got, err := report.Load(path)
	require.NoError(t, err)
	assert.Equal(t, rep.Files, got.Files)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := report.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
