package history

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Sumatoshi-tech/bugtrail/pkg/lineage"
)

// ErrInvalidDataFormat reports a malformed or unreadable commit-log file.
// The parser fails fast rather than guessing at broken input.
var ErrInvalidDataFormat = errors.New("invalid commit log format")

// ParseCommitLog reads a plain-text commit log and groups messages by file.
//
// The format is blocks separated by blank lines. Each block opens with a
// "name:" line, and the rest of the block is the commit message:
//
//	auth:
//	fix: resolve null pointer in login
//
// Messages are returned per file in log order; the first commit of a file
// produces its version 1 (version 0 is the initial state).
func ParseCommitLog(path string) (map[string][]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataFormat, err)
	}

	commits := make(map[string][]string)

	for _, entry := range strings.Split(string(raw), "\n\n") {
		entry = strings.TrimSpace(entry)
		if entry == "" || !strings.Contains(entry, ":") {
			continue
		}

		name, message, _ := strings.Cut(entry, ":")
		name = strings.TrimSpace(name)
		message = strings.TrimSpace(message)

		commits[name] = append(commits[name], message)
	}

	return commits, nil
}

// CommitLog is the parsed commit history of one file.
type CommitLog struct {
	file    string
	commits []lineage.CommitInfo
}

// NewCommitLog parses the commit log at path and keeps the commits
// touching file, classified by the bug-fix detector.
func NewCommitLog(path, file string) (*CommitLog, error) {
	byFile, err := ParseCommitLog(path)
	if err != nil {
		return nil, err
	}

	var detector Detector

	log := &CommitLog{file: file}

	for i, message := range byFile[file] {
		log.commits = append(log.commits, lineage.CommitInfo{
			Version:  i + 1,
			Message:  message,
			File:     file,
			IsBugFix: detector.IsBugFix(message),
		})
	}

	return log, nil
}

// Commits returns all commits in chronological order.
func (c *CommitLog) Commits() []lineage.CommitInfo {
	out := make([]lineage.CommitInfo, len(c.commits))
	copy(out, c.commits)

	return out
}

// BugFixes returns only the bug-fix commits.
func (c *CommitLog) BugFixes() []lineage.CommitInfo {
	var fixes []lineage.CommitInfo

	for _, commit := range c.commits {
		if commit.IsBugFix {
			fixes = append(fixes, commit)
		}
	}

	return fixes
}

// RequireBugFixes fails when the file has no bug-fix commits to trace.
func (c *CommitLog) RequireBugFixes() error {
	if len(c.BugFixes()) == 0 {
		return fmt.Errorf("%s: %w", c.file, lineage.ErrNoBugFixFound)
	}

	return nil
}

// At returns the commit that produced the given version.
func (c *CommitLog) At(version int) (lineage.CommitInfo, bool) {
	for _, commit := range c.commits {
		if commit.Version == version {
			return commit, true
		}
	}

	return lineage.CommitInfo{}, false
}

// LatestVersion returns the newest version number, or 0 with no commits.
func (c *CommitLog) LatestVersion() int {
	if len(c.commits) == 0 {
		return 0
	}

	return c.commits[len(c.commits)-1].Version
}

// VersionCount returns the number of versions including the initial one.
func (c *CommitLog) VersionCount() int {
	return len(c.commits) + 1
}

// Between returns the commits with start < version <= end.
func (c *CommitLog) Between(start, end int) []lineage.CommitInfo {
	var out []lineage.CommitInfo

	for _, commit := range c.commits {
		if start < commit.Version && commit.Version <= end {
			out = append(out, commit)
		}
	}

	return out
}

// Summary renders the history as a short listing, fixes marked.
func (c *CommitLog) Summary() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Commit history for %q: %d commits, %d bug fixes\n",
		c.file, len(c.commits), len(c.BugFixes()))

	for _, commit := range c.commits {
		marker := ""
		if commit.IsBugFix {
			marker = " [BUG FIX]"
		}

		fmt.Fprintf(&b, "v%d: %s%s\n", commit.Version, commit.Message, marker)
	}

	return b.String()
}

// CommitStore serves per-file commit histories from one commit-log file.
// It implements lineage.CommitSource.
type CommitStore struct {
	path string
}

// NewCommitStore creates a store reading from the commit log at path.
func NewCommitStore(path string) *CommitStore {
	return &CommitStore{path: path}
}

// CommitsForFile returns the commit history of name, oldest first.
func (s *CommitStore) CommitsForFile(name string) ([]lineage.CommitInfo, error) {
	log, err := NewCommitLog(s.path, name)
	if err != nil {
		return nil, err
	}

	return log.Commits(), nil
}
