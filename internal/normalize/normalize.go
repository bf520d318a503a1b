// Package normalize prepares source lines for matching. It strips the
// differences that should not count as edits: whitespace, casing, inline
// comments, operator spacing, and trailing statement punctuation.
package normalize

import (
	"regexp"
	"strings"
)

var (
	commentRe   = regexp.MustCompile(`//|#`)
	operatorRe  = regexp.MustCompile(`([=+\-*/<>])`)
	multiSpace  = regexp.MustCompile(`\s+`)
	trailingCut = " ;"
)

// Line normalizes a single source line. The empty string marks a line with
// no matchable content.
func Line(line string) string {
	line = strings.TrimSpace(line)
	line = strings.ReplaceAll(line, "\t", " ")
	line = strings.ToLower(line)

	// Everything from the first inline comment marker on is noise.
	if loc := commentRe.FindStringIndex(line); loc != nil {
		line = strings.TrimSpace(line[:loc[0]])
	}

	if line == "" {
		return ""
	}

	line = operatorRe.ReplaceAllString(line, " $1 ")
	line = multiSpace.ReplaceAllString(line, " ")
	line = strings.TrimRight(line, trailingCut)

	return line
}

// Lines normalizes every line, preserving positions.
func Lines(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = Line(line)
	}

	return out
}
