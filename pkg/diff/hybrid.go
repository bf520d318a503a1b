package diff

// Engine is the hybrid diff engine: an exact Myers pass composed with a
// similarity pass over the lines the exact pass left unmatched.
type Engine struct {
	// Threshold is the minimum combined similarity for a fuzzy pair.
	Threshold float64

	// Alpha is the content weight in the combined similarity blend.
	Alpha float64

	// ContextWindow is the number of neighbor lines per side used for
	// context scoring in the similarity pass.
	ContextWindow int

	// UseSimilarity disables the similarity pass when false, leaving a
	// pure shortest-edit-script alignment.
	UseSimilarity bool
}

// NewEngine returns an Engine with the default thresholds and the
// similarity pass enabled.
func NewEngine() *Engine {
	return &Engine{
		Threshold:     DefaultMatchThreshold,
		Alpha:         DefaultAlpha,
		ContextWindow: DefaultContextWindow,
		UseSimilarity: true,
	}
}

// Diff aligns old against new and returns the full token stream in the wire
// order: one token per old line ascending (exact match, similarity match or
// deletion), then one insertion token per unmatched new line ascending.
//
// The similarity pass hands the exact pass's leftovers to MatchLines, which
// re-derives its own equal-run anchors among them. Leftover lines that are
// textually identical but were split into an insert+delete pair by the exact
// pass therefore come back, and they are still reported as OpSimilar: every
// pairing produced by the second pass is a similarity match on the wire.
func (e *Engine) Diff(old, new []string) []Token {
	exactMatches := make(map[int]int) // 1-based old -> new.
	matchedNew := make(map[int]bool)

	for _, t := range Align(old, new) {
		if t.Op == OpExact {
			exactMatches[t.Old] = t.New
			matchedNew[t.New] = true
		}
	}

	similarMatches := make(map[int]int)

	if e.UseSimilarity {
		e.matchLeftovers(old, new, exactMatches, matchedNew, similarMatches)
	}

	tokens := make([]Token, 0, len(old)+len(new))

	for oldIdx := 1; oldIdx <= len(old); oldIdx++ {
		switch {
		case exactMatches[oldIdx] != 0:
			tokens = append(tokens, Token{Op: OpExact, Old: oldIdx, New: exactMatches[oldIdx]})
		case similarMatches[oldIdx] != 0:
			tokens = append(tokens, Token{Op: OpSimilar, Old: oldIdx, New: similarMatches[oldIdx]})
		default:
			tokens = append(tokens, Token{Op: OpDelete, Old: oldIdx})
		}
	}

	for newIdx := 1; newIdx <= len(new); newIdx++ {
		if !matchedNew[newIdx] {
			tokens = append(tokens, Token{Op: OpInsert, New: newIdx})
		}
	}

	return tokens
}

// matchLeftovers runs the similarity matcher over the not-yet-matched lines
// and maps its sub-list pairings back to absolute 1-based indices.
func (e *Engine) matchLeftovers(
	old, new []string,
	exactMatches map[int]int,
	matchedNew map[int]bool,
	similarMatches map[int]int,
) {
	var (
		leftoverOld    []string
		leftoverOldIdx []int
		leftoverNew    []string
		leftoverNewIdx []int
	)

	for oldIdx := 1; oldIdx <= len(old); oldIdx++ {
		if exactMatches[oldIdx] == 0 {
			leftoverOld = append(leftoverOld, old[oldIdx-1])
			leftoverOldIdx = append(leftoverOldIdx, oldIdx)
		}
	}

	for newIdx := 1; newIdx <= len(new); newIdx++ {
		if !matchedNew[newIdx] {
			leftoverNew = append(leftoverNew, new[newIdx-1])
			leftoverNewIdx = append(leftoverNewIdx, newIdx)
		}
	}

	if len(leftoverOld) == 0 || len(leftoverNew) == 0 {
		return
	}

	for _, pair := range MatchLinesAlpha(leftoverOld, leftoverNew, e.ContextWindow, e.Threshold, e.Alpha) {
		absOld := leftoverOldIdx[pair.Old-1]
		absNew := leftoverNewIdx[pair.New-1]
		similarMatches[absOld] = absNew
		matchedNew[absNew] = true
	}
}
