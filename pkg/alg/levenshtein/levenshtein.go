// Package levenshtein computes edit distances between strings.
package levenshtein

// Distance returns the Levenshtein edit distance between a and b.
// Insertions, deletions and substitutions all cost 1.
// The computation keeps two DP rows, so memory is O(min-side length).
func Distance(a, b string) int {
	if a == b {
		return 0
	}

	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}

	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)

	for j := range prev {
		prev[j] = j
	}

	for i, ca := range ra {
		curr[0] = i + 1

		for j, cb := range rb {
			cost := 1
			if ca == cb {
				cost = 0
			}

			curr[j+1] = min(
				prev[j+1]+1,  // Deletion.
				curr[j]+1,    // Insertion.
				prev[j]+cost, // Substitution.
			)
		}

		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// Normalized returns a similarity in [0, 1] derived from the edit distance:
// 1 − distance/max(len(a), len(b)). Two empty strings are fully similar.
func Normalized(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}

	maxLen := max(len([]rune(a)), len([]rune(b)))

	return 1.0 - float64(Distance(a, b))/float64(maxLen)
}
