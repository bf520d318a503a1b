package lineage

import (
	"fmt"

	"github.com/Sumatoshi-tech/bugtrail/pkg/diff"
)

// LineMapping records how line numbers move between two adjacent versions
// of a file. All indices are 1-based.
type LineMapping struct {
	OldVersion int
	NewVersion int

	// ExactMatches and SimilarityMatches map new-version line numbers to
	// their old-version counterparts.
	ExactMatches      map[int]int
	SimilarityMatches map[int]int

	Deletions  map[int]bool // old-version lines with no successor.
	Insertions map[int]bool // new-version lines with no predecessor.
}

// BuildLineMapping diffs the normalized lines of two adjacent versions and
// indexes the resulting alignment for line-number lookups.
func BuildLineMapping(engine *diff.Engine, oldVer, newVer *FileVersion) *LineMapping {
	mapping := &LineMapping{
		OldVersion:        oldVer.Version,
		NewVersion:        newVer.Version,
		ExactMatches:      make(map[int]int),
		SimilarityMatches: make(map[int]int),
		Deletions:         make(map[int]bool),
		Insertions:        make(map[int]bool),
	}

	for _, tok := range engine.Diff(oldVer.Normalized, newVer.Normalized) {
		switch tok.Op {
		case diff.OpExact:
			mapping.ExactMatches[tok.New] = tok.Old
		case diff.OpSimilar:
			mapping.SimilarityMatches[tok.New] = tok.Old
		case diff.OpDelete:
			mapping.Deletions[tok.Old] = true
		case diff.OpInsert:
			mapping.Insertions[tok.New] = true
		}
	}

	return mapping
}

// OldLineFor returns the old-version line number aligned with newIdx, or
// false when the line was inserted in the new version.
func (m *LineMapping) OldLineFor(newIdx int) (int, bool) {
	if old, ok := m.ExactMatches[newIdx]; ok {
		return old, true
	}

	if old, ok := m.SimilarityMatches[newIdx]; ok {
		return old, true
	}

	return 0, false
}

// NewLineFor returns the new-version line number aligned with oldIdx, or
// false when the line was deleted. Mappings are small, so the reverse scan
// stays linear rather than keeping a second index.
func (m *LineMapping) NewLineFor(oldIdx int) (int, bool) {
	for newIdx, old := range m.ExactMatches {
		if old == oldIdx {
			return newIdx, true
		}
	}

	for newIdx, old := range m.SimilarityMatches {
		if old == oldIdx {
			return newIdx, true
		}
	}

	return 0, false
}

// LineHistoryEntry pins one line to its position and content in one version.
type LineHistoryEntry struct {
	Version    int
	LineNumber int
	Content    string
}

// LineHistory is the backward trail of a single line through the versions
// where it existed, newest first.
type LineHistory struct {
	Path    string
	Entries []LineHistoryEntry
}

// Introduced returns the oldest version in which the line was present.
func (h *LineHistory) Introduced() (LineHistoryEntry, bool) {
	if len(h.Entries) == 0 {
		return LineHistoryEntry{}, false
	}

	return h.Entries[len(h.Entries)-1], true
}

// TrackLineBackward follows one line of fromVersion backward through
// history until it reaches a version where the line does not exist. A
// missing intermediate version stops the walk without failing it.
func TrackLineBackward(engine *diff.Engine, provider VersionProvider, fromVersion, lineNumber int) (*LineHistory, error) {
	current, err := provider.Load(fromVersion)
	if err != nil {
		return nil, fmt.Errorf("load version %d: %w", fromVersion, err)
	}

	if lineNumber < 1 || lineNumber > len(current.Lines) {
		return nil, fmt.Errorf("line %d out of range for version %d", lineNumber, fromVersion)
	}

	history := &LineHistory{
		Path: current.Path,
		Entries: []LineHistoryEntry{{
			Version:    fromVersion,
			LineNumber: lineNumber,
			Content:    current.Lines[lineNumber-1],
		}},
	}

	for version := fromVersion - 1; version >= 0; version-- {
		if !provider.Exists(version) {
			break
		}

		previous, err := provider.Load(version)
		if err != nil {
			return nil, fmt.Errorf("load version %d: %w", version, err)
		}

		mapping := BuildLineMapping(engine, previous, current)

		oldLine, ok := mapping.OldLineFor(lineNumber)
		if !ok {
			// The line was inserted in the version we came from.
			break
		}

		history.Entries = append(history.Entries, LineHistoryEntry{
			Version:    version,
			LineNumber: oldLine,
			Content:    previous.Lines[oldLine-1],
		})

		current, lineNumber = previous, oldLine
	}

	return history, nil
}
