package lineage

import (
	"fmt"
	"strings"
)

// Lineage is the terminal result of tracing one fix backward through
// history. It is always produced, even for failed traces; TraceComplete
// and ErrorMessage carry the outcome.
type Lineage struct {
	File       string
	FixVersion int
	FixCommit  *CommitInfo
	Signature  *Signature

	// IntroductionVersion is meaningful only when IntroductionFound.
	IntroductionVersion int
	IntroductionFound   bool

	// Matches holds one accepted match per searched version, newest first.
	Matches []*Match

	Confidence     float64
	CommitsSpanned int

	// HistoryTruncated is set when the backward scan ran out of loadable
	// versions before ever missing. The introduction version then means
	// "present since the oldest version we could load", which may be later
	// than the true origin.
	HistoryTruncated bool

	TraceComplete bool
	ErrorMessage  string
}

// Summary renders a short human-readable account of the trace.
func (l *Lineage) Summary() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s: fix in version %d", l.File, l.FixVersion)

	switch {
	case !l.TraceComplete:
		fmt.Fprintf(&b, ", trace incomplete")

		if l.ErrorMessage != "" {
			fmt.Fprintf(&b, " (%s)", l.ErrorMessage)
		}
	case l.IntroductionFound:
		fmt.Fprintf(&b, ", introduced in version %d", l.IntroductionVersion)

		if l.HistoryTruncated {
			b.WriteString(" (oldest loadable version, history truncated)")
		}

		fmt.Fprintf(&b, ", confidence %.2f, %d commits spanned",
			l.Confidence, l.CommitsSpanned)
	default:
		fmt.Fprintf(&b, ", introduction not found, confidence %.2f", l.Confidence)
	}

	return b.String()
}
