package lineage

import (
	"github.com/Sumatoshi-tech/bugtrail/pkg/diff"
)

// FixType classifies the shape of a bug-fixing change.
type FixType string

// Fix classifications, from most to least specific.
const (
	FixModification FixType = "modification"
	FixComplex      FixType = "complex"
	FixDeletion     FixType = "deletion"
	FixInsertion    FixType = "insertion_fix"
	FixUnknown      FixType = "unknown"
)

// DefaultSignatureContext is the number of surrounding lines captured on
// each side of the buggy region.
const DefaultSignatureContext = 3

// Signature is the structured representation of the buggy code removed or
// rewritten by a fix, used as the backward search target.
type Signature struct {
	BuggyLines      []string
	BuggyNormalized []string
	LineNumbers     []int // 1-based indices into the pre-fix version.
	ContextBefore   []string
	ContextAfter    []string
	FixType         FixType
	SourceDiff      []diff.Token
}

// IsEmpty reports whether the signature carries no buggy lines. An empty
// signature cannot be searched for; pure-insertion fixes produce one.
func (s *Signature) IsEmpty() bool {
	return len(s.BuggyLines) == 0
}

// ExtractSignature diffs the pre-fix and post-fix versions and derives the
// buggy pattern. Deleted and similarity-matched pre-fix lines are the buggy
// region; exact matches and insertions never contribute to it.
func ExtractSignature(engine *diff.Engine, before, after *FileVersion, contextWindow int) *Signature {
	tokens := engine.Diff(before.Normalized, after.Normalized)

	sig := &Signature{
		FixType:    classifyFix(tokens),
		SourceDiff: tokens,
	}

	for _, tok := range tokens {
		if tok.Op == diff.OpDelete || tok.Op == diff.OpSimilar {
			sig.LineNumbers = append(sig.LineNumbers, tok.Old)
		}
	}

	for _, num := range sig.LineNumbers {
		sig.BuggyLines = append(sig.BuggyLines, before.Lines[num-1])
		sig.BuggyNormalized = append(sig.BuggyNormalized, before.Normalized[num-1])
	}

	if len(sig.LineNumbers) > 0 {
		sig.ContextBefore, sig.ContextAfter = contextAround(
			before.Lines, sig.LineNumbers[0], sig.LineNumbers[len(sig.LineNumbers)-1], contextWindow)
	}

	return sig
}

// classifyFix derives the fix type from the token stream. Any similarity
// match wins; otherwise the mix of deletions and insertions decides.
func classifyFix(tokens []diff.Token) FixType {
	var hasSimilar, hasDelete, hasInsert bool

	for _, tok := range tokens {
		switch tok.Op {
		case diff.OpSimilar:
			hasSimilar = true
		case diff.OpDelete:
			hasDelete = true
		case diff.OpInsert:
			hasInsert = true
		}
	}

	switch {
	case hasSimilar:
		return FixModification
	case hasDelete && hasInsert:
		return FixComplex
	case hasDelete:
		return FixDeletion
	case hasInsert:
		return FixInsertion
	default:
		return FixUnknown
	}
}

// contextAround returns up to window raw lines strictly before minNum and
// strictly after maxNum, clipped to file bounds. Both bounds are 1-based.
func contextAround(lines []string, minNum, maxNum, window int) (before, after []string) {
	lo := max(0, minNum-1-window)
	before = append(before, lines[lo:minNum-1]...)

	hi := min(len(lines), maxNum+window)
	after = append(after, lines[maxNum:hi]...)

	return before, after
}
