package lineage

import (
	"strings"

	"github.com/Sumatoshi-tech/bugtrail/pkg/diff"
)

// Sliding-window search tuning.
const (
	// DefaultTraceThreshold is the minimum window score for a version to
	// count as still containing the bug.
	DefaultTraceThreshold = 0.7

	// contentWeight and contextWeight blend per-line content scores with
	// the context boost.
	contentWeight = 0.8
	contextWeight = 0.2

	// DefaultContextBoost substitutes for the context score when the
	// signature carries no surrounding lines.
	DefaultContextBoost = 0.5
)

// Match records where a signature was found in one version.
type Match struct {
	Version      int
	LineNumbers  []int // 1-based, contiguous.
	MatchedLines []string
	Confidence   float64
}

// lineSimilarity scores one signature line against one candidate line.
// Two blank lines agree perfectly; a blank against a non-blank never does.
func lineSimilarity(a, b string) float64 {
	aBlank := strings.TrimSpace(a) == ""
	bBlank := strings.TrimSpace(b) == ""

	switch {
	case aBlank && bBlank:
		return 1.0
	case aBlank || bBlank:
		return 0.0
	default:
		return diff.ContentSimilarity(a, b)
	}
}

// SearchVersion slides the signature across one version's normalized lines
// and returns the best-scoring window as a Match when it clears threshold.
func SearchVersion(sig *Signature, version *FileVersion, threshold float64) (*Match, bool) {
	window := len(sig.BuggyNormalized)
	if window == 0 || window > len(version.Normalized) {
		return nil, false
	}

	bestStart, bestScore := -1, -1.0

	for start := 0; start+window <= len(version.Normalized); start++ {
		var sum float64

		for i, want := range sig.BuggyNormalized {
			sum += lineSimilarity(want, version.Normalized[start+i])
		}

		score := contentWeight*(sum/float64(window)) +
			contextWeight*contextBoost(sig, version, start, window)

		if score > bestScore {
			bestStart, bestScore = start, score
		}
	}

	if bestScore < threshold {
		return nil, false
	}

	match := &Match{
		Version:      version.Version,
		MatchedLines: version.Lines[bestStart : bestStart+window],
		Confidence:   bestScore,
	}

	for i := range window {
		match.LineNumbers = append(match.LineNumbers, bestStart+i+1)
	}

	return match, true
}

// contextBoost compares the signature's stored context against the raw
// lines immediately outside the candidate window. Sides the signature does
// not carry are skipped; with no context at all the boost is neutral.
func contextBoost(sig *Signature, version *FileVersion, start, window int) float64 {
	var scores []float64

	if len(sig.ContextBefore) > 0 {
		lo := max(0, start-len(sig.ContextBefore))
		scores = append(scores, diff.ContextSimilarity(
			strings.Join(sig.ContextBefore, " "),
			strings.Join(version.Lines[lo:start], " ")))
	}

	if len(sig.ContextAfter) > 0 {
		end := start + window
		hi := min(len(version.Lines), end+len(sig.ContextAfter))
		scores = append(scores, diff.ContextSimilarity(
			strings.Join(sig.ContextAfter, " "),
			strings.Join(version.Lines[end:hi], " ")))
	}

	if len(scores) == 0 {
		return DefaultContextBoost
	}

	var sum float64
	for _, s := range scores {
		sum += s
	}

	return sum / float64(len(scores))
}
