// Package features turns candidate and job description text into the
// numeric and categorical signals consumed by the decision engine.
package features

import (
	"math"

	"github.com/T-USMANI24/hr-matcher/internal/rl"
)

// Features is the per-candidate input of the decision engine.
// Missing numeric values are represented by NaN.
type Features struct {
	Similarity     float64
	Sentiment      rl.Sentiment
	SentimentScore float64
	DegreeMatch    bool
	SkillMatch     float64
}

// Missing marks an unknown numeric feature.
func Missing() float64 { return math.NaN() }

// StateKey discretizes the features into a policy address.
func (f Features) StateKey() rl.StateKey {
	return rl.NewStateKey(f.Similarity, f.Sentiment, f.DegreeMatch, f.SkillMatch)
}
