package diff

import (
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultMatchThreshold is the minimum combined similarity for a fuzzy pair
// to be accepted.
const DefaultMatchThreshold = 0.6

// MatchPair maps an old line number to a new line number, both 1-based.
type MatchPair struct {
	Old int
	New int
}

// MatchLines pairs lines of two sequences. Equal contiguous runs become
// anchor pairs first; lines left inside the changed regions are then paired
// greedily by combined content+context similarity, each index used at most
// once. The greedy order is per old index ascending, and an accepted pairing
// is never reconsidered for a later, better candidate.
func MatchLines(oldLines, newLines []string, contextWindow int, threshold float64) []MatchPair {
	return MatchLinesAlpha(oldLines, newLines, contextWindow, threshold, DefaultAlpha)
}

// MatchLinesAlpha is MatchLines with an explicit content/context blend weight.
func MatchLinesAlpha(oldLines, newLines []string, contextWindow int, threshold, alpha float64) []MatchPair {
	mapping := make(map[int]int) // 0-based old -> new.
	usedNew := make(map[int]bool)

	blocks := changedBlocks(oldLines, newLines, mapping, usedNew)

	for _, blk := range blocks {
		for _, oldIdx := range blk.oldRange {
			if _, done := mapping[oldIdx]; done {
				continue
			}

			lineA := oldLines[oldIdx]
			ctxA := ContextOf(oldLines, oldIdx, contextWindow)

			bestNew := -1
			bestScore := 0.0

			for _, newIdx := range blk.newRange {
				if usedNew[newIdx] {
					continue
				}

				score := CombinedSimilarity(lineA, newLines[newIdx], ctxA,
					ContextOf(newLines, newIdx, contextWindow), alpha)
				if score > bestScore {
					bestScore = score
					bestNew = newIdx
				}
			}

			if bestNew >= 0 && bestScore >= threshold {
				mapping[oldIdx] = bestNew
				usedNew[bestNew] = true
			}
		}
	}

	pairs := make([]MatchPair, 0, len(mapping))
	for oldIdx, newIdx := range mapping {
		pairs = append(pairs, MatchPair{Old: oldIdx + 1, New: newIdx + 1})
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Old < pairs[j].Old })

	return pairs
}

// block is one changed region between two equal runs.
type block struct {
	oldRange []int
	newRange []int
}

// changedBlocks runs a line-level exact diff, records every equal-run pair
// into mapping/usedNew, and returns the interleaving changed regions.
func changedBlocks(oldLines, newLines []string, mapping map[int]int, usedNew map[int]bool) []block {
	var blocks []block

	oldPos, newPos := 0, 0
	gap := block{}

	flush := func() {
		if len(gap.oldRange) > 0 || len(gap.newRange) > 0 {
			blocks = append(blocks, gap)
			gap = block{}
		}
	}

	for _, d := range lineDiffs(oldLines, newLines) {
		n := lineCount(d)

		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()

			for i := 0; i < n; i++ {
				mapping[oldPos+i] = newPos + i
				usedNew[newPos+i] = true
			}

			oldPos += n
			newPos += n
		case diffmatchpatch.DiffDelete:
			for i := 0; i < n; i++ {
				gap.oldRange = append(gap.oldRange, oldPos+i)
			}

			oldPos += n
		case diffmatchpatch.DiffInsert:
			for i := 0; i < n; i++ {
				gap.newRange = append(gap.newRange, newPos+i)
			}

			newPos += n
		}
	}

	flush()

	return blocks
}

// lineDiffs computes a line-granular exact diff via the line-table encoding:
// each distinct line becomes one rune, so equal runs in the rune diff are
// equal runs of whole lines.
func lineDiffs(oldLines, newLines []string) []diffmatchpatch.Diff {
	if len(oldLines) == 0 && len(newLines) == 0 {
		return nil
	}

	dmp := diffmatchpatch.New()

	oldRunes, newRunes, _ := dmp.DiffLinesToRunes(joinLines(oldLines), joinLines(newLines))

	return dmp.DiffMainRunes(oldRunes, newRunes, false)
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}

	return strings.Join(lines, "\n") + "\n"
}

func lineCount(d diffmatchpatch.Diff) int {
	return len([]rune(d.Text))
}
