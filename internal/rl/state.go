package rl

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Similarity buckets.
const (
	SimLow     = "low"
	SimMedium  = "medium"
	SimHigh    = "high"
	SimUnknown = "sim_unknown"
)

// Skill buckets.
const (
	SkillLow     = "low"
	SkillMid     = "mid"
	SkillHigh    = "high"
	SkillUnknown = "skill_unknown"
)

// Label is a normalized, lowercase sentiment label.
type Label string

const (
	Positive Label = "positive"
	Negative Label = "negative"
	Neutral  Label = "neutral"
)

const sentimentScoreCutoff = 0.2

type sentimentKind uint8

const (
	sentimentAbsent sentimentKind = iota
	sentimentLabel
	sentimentScore
)

// Sentiment holds either a textual label or a signed numeric score.
// The zero value is an absent sentiment and normalizes to neutral.
type Sentiment struct {
	kind  sentimentKind
	label string
	score float64
}

// LabelSentiment wraps a textual label such as "Positive".
func LabelSentiment(label string) Sentiment {
	return Sentiment{kind: sentimentLabel, label: label}
}

// ScoreSentiment wraps a signed score.
func ScoreSentiment(score float64) Sentiment {
	return Sentiment{kind: sentimentScore, score: score}
}

// String returns the sentiment as it was supplied.
func (s Sentiment) String() string {
	switch s.kind {
	case sentimentLabel:
		return s.label
	case sentimentScore:
		return strconv.FormatFloat(s.score, 'f', -1, 64)
	default:
		return ""
	}
}

// Normalize maps the sentiment onto positive, negative or neutral. It never fails.
func (s Sentiment) Normalize() Label {
	switch s.kind {
	case sentimentScore:
		return labelForScore(s.score)
	case sentimentLabel:
		text := strings.ToLower(strings.TrimSpace(s.label))
		switch Label(text) {
		case Positive, Negative, Neutral:
			return Label(text)
		}
		// numeric text is treated as a score
		if v, err := strconv.ParseFloat(text, 64); err == nil {
			return labelForScore(v)
		}
		return Neutral
	default:
		return Neutral
	}
}

func labelForScore(v float64) Label {
	switch {
	case math.IsNaN(v):
		return Neutral
	case v > sentimentScoreCutoff:
		return Positive
	case v < -sentimentScoreCutoff:
		return Negative
	default:
		return Neutral
	}
}

// SimilarityBucket discretizes a similarity score. NaN maps to SimUnknown.
func SimilarityBucket(sim float64) string {
	switch {
	case math.IsNaN(sim):
		return SimUnknown
	case sim >= 0.6:
		return SimHigh
	case sim >= 0.2:
		return SimMedium
	default:
		return SimLow
	}
}

// SkillBucket discretizes a skill match fraction. NaN maps to SkillUnknown.
func SkillBucket(skill float64) string {
	switch {
	case math.IsNaN(skill):
		return SkillUnknown
	case skill >= 0.6:
		return SkillHigh
	case skill >= 0.3:
		return SkillMid
	default:
		return SkillLow
	}
}

// StateKey addresses one entry of the policy table.
type StateKey struct {
	Similarity  string
	Sentiment   Label
	DegreeMatch bool
	Skill       string
}

// NewStateKey is the only way callers should build a StateKey.
func NewStateKey(sim float64, sentiment Sentiment, degreeMatch bool, skill float64) StateKey {
	return StateKey{
		Similarity:  SimilarityBucket(sim),
		Sentiment:   sentiment.Normalize(),
		DegreeMatch: degreeMatch,
		Skill:       SkillBucket(skill),
	}
}

// Valid reports whether every field of k is one of the discretized labels.
func (k StateKey) Valid() bool {
	switch k.Similarity {
	case SimLow, SimMedium, SimHigh, SimUnknown:
	default:
		return false
	}
	switch k.Sentiment {
	case Positive, Negative, Neutral:
	default:
		return false
	}
	switch k.Skill {
	case SkillLow, SkillMid, SkillHigh, SkillUnknown:
		return true
	default:
		return false
	}
}

func (k StateKey) String() string {
	return fmt.Sprintf("(%s, %s, %t, %s)", k.Similarity, k.Sentiment, k.DegreeMatch, k.Skill)
}

// MarshalJSON encodes the key as a four element array.
func (k StateKey) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{k.Similarity, string(k.Sentiment), k.DegreeMatch, k.Skill})
}

// UnmarshalJSON decodes the four element array written by MarshalJSON.
func (k *StateKey) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("state key: %w", err)
	}
	if len(raw) != 4 {
		return fmt.Errorf("state key: expected 4 elements, got %d", len(raw))
	}

	var (
		sim, sent, skill string
		degree           bool
	)
	if err := json.Unmarshal(raw[0], &sim); err != nil {
		return fmt.Errorf("state key similarity: %w", err)
	}
	if err := json.Unmarshal(raw[1], &sent); err != nil {
		return fmt.Errorf("state key sentiment: %w", err)
	}
	if err := json.Unmarshal(raw[2], &degree); err != nil {
		return fmt.Errorf("state key degree match: %w", err)
	}
	if err := json.Unmarshal(raw[3], &skill); err != nil {
		return fmt.Errorf("state key skill: %w", err)
	}

	*k = StateKey{Similarity: sim, Sentiment: Label(sent), DegreeMatch: degree, Skill: skill}
	return nil
}
