// Package history serves file version stacks and commit logs to the
// lineage tracer, from version-file directories or git repositories.
package history

import (
	"regexp"
	"strings"
)

// fixKeywords are terms whose presence anywhere in a commit message marks
// it as a likely bug fix.
var fixKeywords = []string{
	"fix", "bug", "error", "issue", "patch", "resolve",
	"crash", "fatal", "critical", "urgent", "security", "vulnerability",
	"hotfix", "bugfix", "defect", "fault", "broken", "broke", "fail", "failure",
	"regression", "revert", "corrupt", "incorrect", "wrong",
	"prevent", "avoid", "stop", "block",
	"leak", "overflow", "underflow",
	"hang", "freeze",
	"undefined",
	"exception",
	"typo", "spelling",
	"repair", "correct", "amend", "rectify",
}

// conventionalPrefixes are conventional-commit prefixes used for fixes.
var conventionalPrefixes = []string{
	"fix:", "fix(", "hotfix:", "hotfix(",
	"bugfix:", "bugfix(", "perf:", "perf(",
	"revert:", "revert(", "security:", "security(",
}

var (
	issueRefRe  = regexp.MustCompile(`#\d+`)
	actionRefRe = regexp.MustCompile(`(closes|fixes|resolves|fixed|resolved)\s+#?\d+`)
)

// Detector classifies commit messages as bug fixes or not, by keyword,
// conventional prefix, and issue reference.
type Detector struct{}

// IsBugFix reports whether message looks like a bug-fix commit.
func (Detector) IsBugFix(message string) bool {
	text := strings.ToLower(message)

	for _, prefix := range conventionalPrefixes {
		if strings.HasPrefix(text, prefix) {
			return true
		}
	}

	for _, word := range fixKeywords {
		if strings.Contains(text, word) {
			return true
		}
	}

	if issueRefRe.MatchString(text) {
		return true
	}

	return actionRefRe.MatchString(text)
}
