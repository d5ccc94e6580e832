package decision

import (
	"math"

	"github.com/T-USMANI24/hr-matcher/internal/features"
)

// Record is the outcome for one candidate. Percentages are rounded to one
// decimal place and may be NaN when the underlying feature was missing.
type Record struct {
	CVIndex        int
	CVName         string
	SimilarityPct  float64
	SkillMatchPct  float64
	DegreeMatch    bool
	MatchScorePct  float64
	SentimentLabel string
	SentimentScore float64
	Confidence     float64
	Decision       string
	Explanation    string
	// Gated is set when a hard filter forced the decision.
	Gated bool
}

func newRecord(index int, name string, f features.Features) Record {
	return Record{
		CVIndex:        index,
		CVName:         name,
		SimilarityPct:  round(f.Similarity*100, 1),
		SkillMatchPct:  round(f.SkillMatch*100, 1),
		DegreeMatch:    f.DegreeMatch,
		MatchScorePct:  matchScore(f),
		SentimentLabel: f.Sentiment.String(),
		SentimentScore: round(f.SentimentScore, 2),
	}
}

// matchScore averages similarity, skill match and degree match.
func matchScore(f features.Features) float64 {
	degree := 0.0
	if f.DegreeMatch {
		degree = 1
	}
	return round((f.Similarity+f.SkillMatch+degree)/3*100, 1)
}

func round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
