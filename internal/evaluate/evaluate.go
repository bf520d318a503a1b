// Package evaluate scores the line matcher against ground-truth mapping
// files. A dataset is a directory of cases: test_case_N_old.*,
// test_case_N_new.*, and test_case_N_map.txt with one "i-j" pair per line,
// 1-based, meaning old line i corresponds to new line j.
package evaluate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/bugtrail/internal/normalize"
	"github.com/Sumatoshi-tech/bugtrail/pkg/diff"
)

// Pair is one ground-truth or predicted line correspondence.
type Pair struct {
	Old int
	New int
}

// CaseResult scores one test case.
type CaseResult struct {
	ID          string
	Correct     int
	Predicted   int
	GroundTruth int
}

// Precision is the fraction of predicted pairs that are correct.
func (r CaseResult) Precision() float64 {
	if r.Predicted == 0 {
		return 0
	}

	return float64(r.Correct) / float64(r.Predicted)
}

// Recall is the fraction of ground-truth pairs that were predicted.
func (r CaseResult) Recall() float64 {
	if r.GroundTruth == 0 {
		return 0
	}

	return float64(r.Correct) / float64(r.GroundTruth)
}

// F1 is the harmonic mean of precision and recall.
func (r CaseResult) F1() float64 {
	p, rec := r.Precision(), r.Recall()
	if p+rec == 0 {
		return 0
	}

	return 2 * p * rec / (p + rec)
}

// DatasetResult aggregates case scores. The micro-averaged metrics pool
// all pairs, so large cases weigh more than small ones.
type DatasetResult struct {
	Cases       []CaseResult
	Correct     int
	Predicted   int
	GroundTruth int
}

// Accuracy is the micro-averaged recall, matching the historical score
// reported for this dataset format.
func (r *DatasetResult) Accuracy() float64 {
	if r.GroundTruth == 0 {
		return 0
	}

	return float64(r.Correct) / float64(r.GroundTruth)
}

// Precision is the micro-averaged precision over all cases.
func (r *DatasetResult) Precision() float64 {
	if r.Predicted == 0 {
		return 0
	}

	return float64(r.Correct) / float64(r.Predicted)
}

// F1 is the harmonic mean of the micro-averaged precision and recall.
func (r *DatasetResult) F1() float64 {
	p, rec := r.Precision(), r.Accuracy()
	if p+rec == 0 {
		return 0
	}

	return 2 * p * rec / (p + rec)
}

// LoadMapping reads a ground-truth mapping file.
func LoadMapping(path string) (map[Pair]bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping %s: %w", path, err)
	}

	pairs := make(map[Pair]bool)

	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		left, right, ok := strings.Cut(line, "-")
		if !ok {
			return nil, fmt.Errorf("mapping %s: bad pair %q", path, line)
		}

		oldIdx, err := strconv.Atoi(strings.TrimSpace(left))
		if err != nil {
			return nil, fmt.Errorf("mapping %s: bad pair %q: %w", path, line, err)
		}

		newIdx, err := strconv.Atoi(strings.TrimSpace(right))
		if err != nil {
			return nil, fmt.Errorf("mapping %s: bad pair %q: %w", path, line, err)
		}

		pairs[Pair{Old: oldIdx, New: newIdx}] = true
	}

	return pairs, nil
}

// readNormalizedLines loads a source file and normalizes its lines the
// same way the matcher's callers do.
func readNormalizedLines(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	content := strings.TrimSuffix(string(raw), "\n")
	if content == "" {
		return nil, nil
	}

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	return normalize.Lines(lines), nil
}

// EvaluateCase runs the matcher on one old/new pair and scores it against
// the ground truth.
func EvaluateCase(id, oldPath, newPath, mapPath string) (CaseResult, error) {
	oldLines, err := readNormalizedLines(oldPath)
	if err != nil {
		return CaseResult{}, err
	}

	newLines, err := readNormalizedLines(newPath)
	if err != nil {
		return CaseResult{}, err
	}

	truth, err := LoadMapping(mapPath)
	if err != nil {
		return CaseResult{}, err
	}

	matches := diff.MatchLines(oldLines, newLines, diff.DefaultContextWindow, diff.DefaultMatchThreshold)

	result := CaseResult{
		ID:          id,
		Predicted:   len(matches),
		GroundTruth: len(truth),
	}

	for _, m := range matches {
		if truth[Pair{Old: m.Old, New: m.New}] {
			result.Correct++
		}
	}

	return result, nil
}

// testCase is one discovered dataset entry.
type testCase struct {
	id      string
	oldPath string
	newPath string
	mapPath string
}

var caseFileRe = regexp.MustCompile(`^test_case_(\d+)_(old|new)\.`)

// discoverCases finds complete cases in dir, sorted numerically. Cases
// missing one of their three files are skipped.
func discoverCases(dir string) ([]testCase, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dataset dir %s: %w", dir, err)
	}

	found := make(map[string]*testCase)

	for _, entry := range entries {
		m := caseFileRe.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}

		id := m[1]

		tc := found[id]
		if tc == nil {
			tc = &testCase{id: id, mapPath: filepath.Join(dir, "test_case_"+id+"_map.txt")}
			found[id] = tc
		}

		if m[2] == "old" {
			tc.oldPath = filepath.Join(dir, entry.Name())
		} else {
			tc.newPath = filepath.Join(dir, entry.Name())
		}
	}

	var cases []testCase

	for _, tc := range found {
		if tc.oldPath == "" || tc.newPath == "" {
			continue
		}

		if _, err := os.Stat(tc.mapPath); err != nil {
			continue
		}

		cases = append(cases, *tc)
	}

	sort.Slice(cases, func(i, j int) bool {
		a, _ := strconv.Atoi(cases[i].id)
		b, _ := strconv.Atoi(cases[j].id)

		return a < b
	})

	return cases, nil
}

// EvaluateDataset scores every complete case under dir.
func EvaluateDataset(dir string) (*DatasetResult, error) {
	cases, err := discoverCases(dir)
	if err != nil {
		return nil, err
	}

	result := &DatasetResult{}

	for _, tc := range cases {
		cr, err := EvaluateCase(tc.id, tc.oldPath, tc.newPath, tc.mapPath)
		if err != nil {
			return nil, err
		}

		result.Cases = append(result.Cases, cr)
		result.Correct += cr.Correct
		result.Predicted += cr.Predicted
		result.GroundTruth += cr.GroundTruth
	}

	return result, nil
}
