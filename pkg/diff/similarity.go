package diff

import (
	"math"
	"strings"

	"github.com/Sumatoshi-tech/bugtrail/pkg/alg/levenshtein"
)

// DefaultAlpha is the content weight in the combined similarity blend.
const DefaultAlpha = 0.6

// DefaultContextWindow is the number of lines taken on each side of a line
// when building its context string.
const DefaultContextWindow = 4

// ContentSimilarity returns a [0, 1] similarity between two lines based on
// normalized Levenshtein distance. Two empty lines are fully similar.
func ContentSimilarity(a, b string) float64 {
	return levenshtein.Normalized(a, b)
}

// ContextOf builds the context string for the line at idx (0-based): up to
// window lines above and below, the line itself included, joined by spaces.
func ContextOf(lines []string, idx, window int) string {
	start := max(0, idx-window)
	end := min(len(lines), idx+window+1)

	return strings.Join(lines[start:end], " ")
}

// ContextSimilarity returns the cosine similarity of two context strings
// treated as bags of whitespace-separated tokens. Two blank strings are
// fully similar; a blank against a non-blank scores zero.
func ContextSimilarity(a, b string) float64 {
	aBlank := strings.TrimSpace(a) == ""
	bBlank := strings.TrimSpace(b) == ""

	if aBlank && bBlank {
		return 1.0
	}

	if aBlank || bBlank {
		return 0.0
	}

	countsA := tokenCounts(a)
	countsB := tokenCounts(b)

	var dot float64

	for word, ca := range countsA {
		if cb, ok := countsB[word]; ok {
			dot += float64(ca) * float64(cb)
		}
	}

	normA := vectorNorm(countsA)
	normB := vectorNorm(countsB)

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dot / (normA * normB)
}

// CombinedSimilarity blends content and context similarity:
// alpha·content + (1−alpha)·context.
func CombinedSimilarity(lineA, lineB, ctxA, ctxB string, alpha float64) float64 {
	content := ContentSimilarity(lineA, lineB)
	context := ContextSimilarity(ctxA, ctxB)

	return alpha*content + (1.0-alpha)*context
}

func tokenCounts(text string) map[string]int {
	counts := make(map[string]int)
	for _, word := range strings.Fields(text) {
		counts[word]++
	}

	return counts
}

func vectorNorm(counts map[string]int) float64 {
	var sum float64

	for _, c := range counts {
		sum += float64(c) * float64(c)
	}

	return math.Sqrt(sum)
}
