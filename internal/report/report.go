// Package report renders bug lineage results for terminals, YAML stores,
// compressed archives, and HTML confidence plots.
package report

import (
	"sort"
	"time"

	"github.com/Sumatoshi-tech/bugtrail/pkg/lineage"
)

// Report is the serializable aggregation of traces across files.
type Report struct {
	GeneratedAt time.Time    `yaml:"generated_at"`
	Files       []FileReport `yaml:"files"`
}

// FileReport groups one file's traces and failures.
type FileReport struct {
	File     string          `yaml:"file"`
	Lineages []LineageRecord `yaml:"lineages"`
	Error    string          `yaml:"error,omitempty"`
}

// LineageRecord is the flattened, storage-friendly form of a lineage.
type LineageRecord struct {
	FixVersion          int           `yaml:"fix_version"`
	FixType             string        `yaml:"fix_type,omitempty"`
	FixCommitMessage    string        `yaml:"fix_commit_message,omitempty"`
	BuggyLines          []string      `yaml:"buggy_lines,omitempty"`
	IntroductionVersion int           `yaml:"introduction_version"`
	IntroductionFound   bool          `yaml:"introduction_found"`
	Confidence          float64       `yaml:"confidence"`
	CommitsSpanned      int           `yaml:"commits_spanned"`
	HistoryTruncated    bool          `yaml:"history_truncated,omitempty"`
	TraceComplete       bool          `yaml:"trace_complete"`
	ErrorMessage        string        `yaml:"error_message,omitempty"`
	Matches             []MatchRecord `yaml:"matches,omitempty"`
}

// MatchRecord records one accepted match during the backward scan.
type MatchRecord struct {
	Version    int     `yaml:"version"`
	FirstLine  int     `yaml:"first_line"`
	Confidence float64 `yaml:"confidence"`
}

// FromLineages builds a single-file report.
func FromLineages(file string, lineages []*lineage.Lineage) *Report {
	return &Report{
		GeneratedAt: time.Now().UTC(),
		Files:       []FileReport{fileReport(file, lineages, nil)},
	}
}

// FromBatch builds a multi-file report, files sorted by name. Failed files
// appear with the error and no lineages.
func FromBatch(batch *lineage.BatchResult) *Report {
	rep := &Report{GeneratedAt: time.Now().UTC()}

	names := make([]string, 0, len(batch.Lineages)+len(batch.Errors))
	for name := range batch.Lineages {
		names = append(names, name)
	}

	for name := range batch.Errors {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		if err, failed := batch.Errors[name]; failed {
			rep.Files = append(rep.Files, fileReport(name, nil, err))

			continue
		}

		rep.Files = append(rep.Files, fileReport(name, batch.Lineages[name], nil))
	}

	return rep
}

func fileReport(file string, lineages []*lineage.Lineage, err error) FileReport {
	fr := FileReport{File: file}
	if err != nil {
		fr.Error = err.Error()

		return fr
	}

	for _, l := range lineages {
		fr.Lineages = append(fr.Lineages, recordFor(l))
	}

	return fr
}

func recordFor(l *lineage.Lineage) LineageRecord {
	rec := LineageRecord{
		FixVersion:          l.FixVersion,
		IntroductionVersion: l.IntroductionVersion,
		IntroductionFound:   l.IntroductionFound,
		Confidence:          l.Confidence,
		CommitsSpanned:      l.CommitsSpanned,
		HistoryTruncated:    l.HistoryTruncated,
		TraceComplete:       l.TraceComplete,
		ErrorMessage:        l.ErrorMessage,
	}

	if l.Signature != nil {
		rec.FixType = string(l.Signature.FixType)
		rec.BuggyLines = l.Signature.BuggyLines
	}

	if l.FixCommit != nil {
		rec.FixCommitMessage = l.FixCommit.Message
	}

	for _, m := range l.Matches {
		mr := MatchRecord{Version: m.Version, Confidence: m.Confidence}
		if len(m.LineNumbers) > 0 {
			mr.FirstLine = m.LineNumbers[0]
		}

		rec.Matches = append(rec.Matches, mr)
	}

	return rec
}
