package lineage

import (
	"math"

	"github.com/Sumatoshi-tech/bugtrail/pkg/alg/stats"
)

// Confidence model weights. The result blends match quality, match
// consistency, signature strength, and trace completeness into one score.
const (
	weightMeanMatch    = 0.4
	weightConsistency  = 0.3
	weightSignature    = 0.2
	weightCompleteness = 0.1

	// signatureSaturation is the buggy-line count at which the signature
	// strength factor maxes out.
	signatureSaturation = 5.0

	// incompleteTraceFactor discounts the completeness term when no
	// introduction version was determined.
	incompleteTraceFactor = 0.5
)

// TraceConfidence aggregates per-version match scores into a single [0,1]
// confidence value. It is a heuristic blend, not a probability.
func TraceConfidence(matches []*Match, buggyLineCount int, introductionFound bool) float64 {
	if len(matches) == 0 {
		return 0.0
	}

	scores := make([]float64, len(matches))
	for i, m := range matches {
		scores[i] = m.Confidence
	}

	mean, stddev := stats.MeanStdDev(scores)
	variance := stddev * stddev

	completeness := incompleteTraceFactor
	if introductionFound {
		completeness = 1.0
	}

	confidence := weightMeanMatch*mean +
		weightConsistency*math.Max(0, 1.0-variance) +
		weightSignature*math.Min(1.0, float64(buggyLineCount)/signatureSaturation) +
		weightCompleteness*completeness

	return stats.Clamp(confidence, 0.0, 1.0)
}
