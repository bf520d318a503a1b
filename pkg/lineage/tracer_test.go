package lineage

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	versions map[int]*FileVersion
}

func (s *stubProvider) Exists(version int) bool {
	_, ok := s.versions[version]

	return ok
}

func (s *stubProvider) Load(version int) (*FileVersion, error) {
	fv, ok := s.versions[version]
	if !ok {
		return nil, fmt.Errorf("version %d: %w", version, ErrVersionNotFound)
	}

	return fv, nil
}

func (s *stubProvider) AvailableVersions() []int {
	versions := make([]int, 0, len(s.versions))
	for v := range s.versions {
		versions = append(versions, v)
	}

	sort.Ints(versions)

	return versions
}

type stubVersions map[string]*stubProvider

func (s stubVersions) ProviderFor(name string) (VersionProvider, error) {
	p, ok := s[name]
	if !ok {
		return nil, fmt.Errorf("no versions for %s", name)
	}

	return p, nil
}

type stubCommits map[string][]CommitInfo

func (s stubCommits) CommitsForFile(name string) ([]CommitInfo, error) {
	commits, ok := s[name]
	if !ok {
		return nil, fmt.Errorf("no history for %s", name)
	}

	return commits, nil
}

// fixtureVersions builds the three-version history where "== " is the bug
// and version 3 flips it to "!= ".
func fixtureVersions() *stubProvider {
	buggy := []string{"int main() {", "if (x == 0) {", "return 1;", "}"}
	fixed := []string{"int main() {", "if (x != 0) {", "return 1;", "}"}

	return &stubProvider{versions: map[int]*FileVersion{
		1: makeVersion(1, buggy...),
		2: makeVersion(2, buggy...),
		3: makeVersion(3, fixed...),
	}}
}

func TestTraceSingleBug_FindsIntroduction(t *testing.T) {
	t.Parallel()

	commits := stubCommits{"app.c": {
		{Version: 1, Message: "initial", File: "app.c"},
		{Version: 2, Message: "refactor", File: "app.c"},
		{Version: 3, Message: "fix null check", File: "app.c", IsBugFix: true},
	}}

	tracer := NewTracer(stubVersions{"app.c": fixtureVersions()}, commits, Config{})

	result, err := tracer.TraceSingleBug(t.Context(), "app.c", 3)
	require.NoError(t, err)

	assert.True(t, result.TraceComplete)
	assert.True(t, result.IntroductionFound)
	assert.Equal(t, 1, result.IntroductionVersion)
	assert.Greater(t, result.Confidence, 0.5)
	assert.Equal(t, 2, result.CommitsSpanned)
	assert.Len(t, result.Matches, 2)
	assert.Equal(t, []int{2, 1}, []int{result.Matches[0].Version, result.Matches[1].Version})

	require.NotNil(t, result.FixCommit)
	assert.Equal(t, "fix null check", result.FixCommit.Message)

	// Version 0 was never loadable, so "introduced in version 1" may
	// understate the bug's true age.
	assert.True(t, result.HistoryTruncated)
}

func TestTraceSingleBug_MissingFixPair(t *testing.T) {
	t.Parallel()

	tracer := NewTracer(stubVersions{"app.c": fixtureVersions()}, nil, Config{})

	result, err := tracer.TraceSingleBug(t.Context(), "app.c", 7)

	require.ErrorIs(t, err, ErrTraceIncomplete)
	require.NotNil(t, result)
	assert.False(t, result.TraceComplete)
	assert.Equal(t, "missing required versions", result.ErrorMessage)
}

func TestTraceSingleBug_EmptySignature(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{versions: map[int]*FileVersion{
		1: makeVersion(1, "f()"),
		2: makeVersion(2, "f()", "g()"),
	}}

	tracer := NewTracer(stubVersions{"app.c": provider}, nil, Config{})

	result, err := tracer.TraceSingleBug(t.Context(), "app.c", 2)
	require.NoError(t, err)

	assert.False(t, result.TraceComplete)
	assert.InDelta(t, 0.0, result.Confidence, 0.0001)
	assert.Equal(t, "no buggy lines identified", result.ErrorMessage)
	assert.Equal(t, FixInsertion, result.Signature.FixType)
	assert.Empty(t, result.Matches)
}

func TestTraceSingleBug_UnknownFile(t *testing.T) {
	t.Parallel()

	tracer := NewTracer(stubVersions{}, nil, Config{})

	result, err := tracer.TraceSingleBug(t.Context(), "ghost.c", 3)

	require.Error(t, err)
	require.NotNil(t, result)
	assert.NotEmpty(t, result.ErrorMessage)
}

func TestTraceSingleBug_ScanStopsAtFirstMiss(t *testing.T) {
	t.Parallel()

	buggy := []string{"ctx a", "broken_call(1, 2, 3)", "ctx b"}
	fixed := []string{"ctx a", "broken_call(1, 2, 4)", "ctx b"}

	provider := &stubProvider{versions: map[int]*FileVersion{
		0: makeVersion(0, "qqq", "www", "eee"),
		1: makeVersion(1, buggy...),
		2: makeVersion(2, buggy...),
		3: makeVersion(3, fixed...),
	}}

	tracer := NewTracer(stubVersions{"app.c": provider}, nil, Config{})

	result, err := tracer.TraceSingleBug(t.Context(), "app.c", 3)
	require.NoError(t, err)

	assert.True(t, result.TraceComplete)
	assert.Equal(t, 1, result.IntroductionVersion)
	assert.Len(t, result.Matches, 2)

	// The scan reached version 0 and missed, so the history was not
	// truncated: version 1 is the genuine introduction.
	assert.False(t, result.HistoryTruncated)
}

func TestAnalyzeFile(t *testing.T) {
	t.Parallel()

	t.Run("no_bug_fixes", func(t *testing.T) {
		t.Parallel()

		commits := stubCommits{"app.c": {
			{Version: 1, Message: "initial", File: "app.c"},
		}}

		tracer := NewTracer(stubVersions{"app.c": fixtureVersions()}, commits, Config{})

		_, err := tracer.AnalyzeFile(t.Context(), "app.c")
		require.ErrorIs(t, err, ErrNoBugFixFound)
	})

	t.Run("traces_every_fix", func(t *testing.T) {
		t.Parallel()

		commits := stubCommits{"app.c": {
			{Version: 1, Message: "initial", File: "app.c"},
			{Version: 3, Message: "fix check", File: "app.c", IsBugFix: true},
		}}

		tracer := NewTracer(stubVersions{"app.c": fixtureVersions()}, commits, Config{})

		lineages, err := tracer.AnalyzeFile(t.Context(), "app.c")
		require.NoError(t, err)
		require.Len(t, lineages, 1)
		assert.True(t, lineages[0].TraceComplete)
	})

	t.Run("failed_trace_does_not_abort_others", func(t *testing.T) {
		t.Parallel()

		commits := stubCommits{"app.c": {
			{Version: 3, Message: "fix check", File: "app.c", IsBugFix: true},
			{Version: 9, Message: "fix phantom", File: "app.c", IsBugFix: true},
		}}

		tracer := NewTracer(stubVersions{"app.c": fixtureVersions()}, commits, Config{})

		lineages, err := tracer.AnalyzeFile(t.Context(), "app.c")
		require.NoError(t, err)
		require.Len(t, lineages, 2)

		assert.True(t, lineages[0].TraceComplete)
		assert.False(t, lineages[1].TraceComplete)
		assert.Equal(t, "missing required versions", lineages[1].ErrorMessage)
	})
}

func TestBatchAnalyze_IsolatesFailures(t *testing.T) {
	t.Parallel()

	commits := stubCommits{
		"app.c": {{Version: 3, Message: "fix check", File: "app.c", IsBugFix: true}},
	}

	tracer := NewTracer(stubVersions{"app.c": fixtureVersions()}, commits, Config{})

	result := tracer.BatchAnalyze(t.Context(), []string{"app.c", "ghost.c"})

	require.Len(t, result.Lineages["app.c"], 1)
	assert.True(t, result.Lineages["app.c"][0].TraceComplete)

	require.Contains(t, result.Errors, "ghost.c")
	assert.NotContains(t, result.Lineages, "ghost.c")
}

func TestTracerClear(t *testing.T) {
	t.Parallel()

	tracer := NewTracer(stubVersions{"app.c": fixtureVersions()}, nil, Config{})

	_, err := tracer.TraceSingleBug(t.Context(), "app.c", 3)
	require.NoError(t, err)

	tracer.Clear()

	// Still works after dropping the caches.
	_, err = tracer.TraceSingleBug(t.Context(), "app.c", 3)
	require.NoError(t, err)
}

func TestLineageSummary(t *testing.T) {
	t.Parallel()

	t.Run("complete", func(t *testing.T) {
		t.Parallel()

		l := &Lineage{
			File:                "app.c",
			FixVersion:          3,
			IntroductionVersion: 1,
			IntroductionFound:   true,
			TraceComplete:       true,
			Confidence:          0.84,
			CommitsSpanned:      2,
		}

		assert.Contains(t, l.Summary(), "introduced in version 1")
		assert.Contains(t, l.Summary(), "confidence 0.84")
	})

	t.Run("incomplete", func(t *testing.T) {
		t.Parallel()

		l := &Lineage{File: "app.c", FixVersion: 3, ErrorMessage: "missing required versions"}

		assert.Contains(t, l.Summary(), "trace incomplete")
		assert.Contains(t, l.Summary(), "missing required versions")
	})
}
