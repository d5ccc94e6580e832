package export

import (
	"math"
	"strconv"

	"github.com/T-USMANI24/hr-matcher/internal/decision"
)

const (
	SkillBandHigh    = "High"
	SkillBandMedium  = "Medium"
	SkillBandLow     = "Low"
	SkillBandUnknown = "Unknown"
)

// Distribution counts records per category.
type Distribution struct {
	Sentiment   map[string]int `json:"sentiment"`
	Decisions   map[string]int `json:"decisions"`
	DegreeMatch map[string]int `json:"degree_match"`
	SkillBands  map[string]int `json:"skill_bands"`
}

// ReportByDecision groups candidates under their decision.
func ReportByDecision(records []decision.Record) map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, r := range records {
		report[r.Decision] = append(report[r.Decision], map[string]string{
			"cv":          r.CVName,
			"index":       strconv.Itoa(r.CVIndex),
			"match_score": formatNumber(r.MatchScorePct),
			"confidence":  formatNumber(r.Confidence),
			"explanation": r.Explanation,
		})
	}
	return report
}

// Summarize builds the sentiment, decision, degree and skill band distributions.
func Summarize(records []decision.Record) Distribution {
	d := Distribution{
		Sentiment:   make(map[string]int),
		Decisions:   make(map[string]int),
		DegreeMatch: make(map[string]int),
		SkillBands:  make(map[string]int),
	}

	for _, r := range records {
		d.Sentiment[r.SentimentLabel]++
		d.Decisions[r.Decision]++
		d.DegreeMatch[strconv.FormatBool(r.DegreeMatch)]++
		d.SkillBands[SkillBand(r.SkillMatchPct)]++
	}
	return d
}

// SkillBand buckets a skill match percentage.
func SkillBand(pct float64) string {
	switch {
	case math.IsNaN(pct):
		return SkillBandUnknown
	case pct >= 80:
		return SkillBandHigh
	case pct >= 50:
		return SkillBandMedium
	default:
		return SkillBandLow
	}
}
