package evaluate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func writeDataset(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	writeFile(t, dir, "test_case_1_old.py", "alpha one\nbeta two val\ngamma three\n")
	writeFile(t, dir, "test_case_1_new.py", "alpha one\nbeta two value\ngamma three\n")
	writeFile(t, dir, "test_case_1_map.txt", "1-1\n2-2\n3-3\n")

	writeFile(t, dir, "test_case_2_old.c", "unchanged line\n")
	writeFile(t, dir, "test_case_2_new.c", "unchanged line\n")
	writeFile(t, dir, "test_case_2_map.txt", "1-1\n")

	// Incomplete case: no map file. Must be skipped, not an error.
	writeFile(t, dir, "test_case_3_old.js", "x\n")
	writeFile(t, dir, "test_case_3_new.js", "x\n")

	return dir
}

func TestLoadMapping(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "map.txt", "1-1\n2-3\n\n10-12\n")

	pairs, err := LoadMapping(filepath.Join(dir, "map.txt"))
	require.NoError(t, err)

	assert.Len(t, pairs, 3)
	assert.True(t, pairs[Pair{Old: 2, New: 3}])
	assert.True(t, pairs[Pair{Old: 10, New: 12}])
}

func TestLoadMapping_Malformed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "map.txt", "1-1\nnot a pair\n")

	_, err := LoadMapping(filepath.Join(dir, "map.txt"))
	require.Error(t, err)
}

func TestEvaluateCase(t *testing.T) {
	t.Parallel()

	dir := writeDataset(t)

	result, err := EvaluateCase("1",
		filepath.Join(dir, "test_case_1_old.py"),
		filepath.Join(dir, "test_case_1_new.py"),
		filepath.Join(dir, "test_case_1_map.txt"))
	require.NoError(t, err)

	assert.Equal(t, 3, result.GroundTruth)
	assert.Equal(t, 3, result.Correct)
	assert.InDelta(t, 1.0, result.Precision(), 0.0001)
	assert.InDelta(t, 1.0, result.Recall(), 0.0001)
	assert.InDelta(t, 1.0, result.F1(), 0.0001)
}

func TestEvaluateDataset(t *testing.T) {
	t.Parallel()

	result, err := EvaluateDataset(writeDataset(t))
	require.NoError(t, err)

	// Case 3 has no map file and is skipped.
	require.Len(t, result.Cases, 2)
	assert.Equal(t, "1", result.Cases[0].ID)
	assert.Equal(t, "2", result.Cases[1].ID)

	assert.Equal(t, 4, result.GroundTruth)
	assert.Equal(t, 4, result.Correct)
	assert.InDelta(t, 1.0, result.Accuracy(), 0.0001)
	assert.InDelta(t, 1.0, result.F1(), 0.0001)
}

func TestCaseResultMetrics_ZeroGuards(t *testing.T) {
	t.Parallel()

	empty := CaseResult{}

	assert.InDelta(t, 0.0, empty.Precision(), 0.0001)
	assert.InDelta(t, 0.0, empty.Recall(), 0.0001)
	assert.InDelta(t, 0.0, empty.F1(), 0.0001)
}

func TestEvaluateDataset_MissingDir(t *testing.T) {
	t.Parallel()

	_, err := EvaluateDataset(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}
