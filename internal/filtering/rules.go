package filtering

import (
	"fmt"

	"github.com/T-USMANI24/hr-matcher/internal/features"
)

type degreeRule struct{}

// NewDegree creates a rule that rejects candidates without a required degree.
func NewDegree() Rule {
	return &degreeRule{}
}

func (r *degreeRule) Name() string { return "degree" }

func (r *degreeRule) Validate() error { return nil }

func (r *degreeRule) Check(f features.Features) (Verdict, bool) {
	if f.DegreeMatch {
		return Verdict{}, false
	}
	return reject(r.Name(), "Degree mismatch"), true
}

func (r *degreeRule) Status() Status {
	return Status{Name: r.Name(), Details: map[string]string{"required": "true"}}
}

type skillMatchRule struct {
	threshold float64
}

// NewSkillMatch creates a rule that rejects candidates whose skill match
// fraction is below threshold.
func NewSkillMatch(threshold float64) Rule {
	return &skillMatchRule{threshold: threshold}
}

func (r *skillMatchRule) Name() string { return "skill_match" }

func (r *skillMatchRule) Validate() error { return validateThreshold(r.threshold) }

func (r *skillMatchRule) Check(f features.Features) (Verdict, bool) {
	if f.SkillMatch < r.threshold {
		return reject(r.Name(), fmt.Sprintf("Skills match below %.0f%%", r.threshold*100)), true
	}
	return Verdict{}, false
}

func (r *skillMatchRule) Status() Status {
	return Status{Name: r.Name(), Details: map[string]string{"minimum": fmt.Sprintf("%.2f", r.threshold)}}
}

type similarityRule struct {
	threshold float64
}

// NewSimilarity creates a rule that rejects candidates whose text similarity
// is below threshold.
func NewSimilarity(threshold float64) Rule {
	return &similarityRule{threshold: threshold}
}

func (r *similarityRule) Name() string { return "similarity" }

func (r *similarityRule) Validate() error { return validateThreshold(r.threshold) }

func (r *similarityRule) Check(f features.Features) (Verdict, bool) {
	if f.Similarity < r.threshold {
		return reject(r.Name(), fmt.Sprintf("Similarity score below %.2f", r.threshold)), true
	}
	return Verdict{}, false
}

func (r *similarityRule) Status() Status {
	return Status{Name: r.Name(), Details: map[string]string{"minimum": fmt.Sprintf("%.2f", r.threshold)}}
}
