package ai

import "context"

// Sentiment labels returned by classifiers.
const (
	LabelPositive = "Positive"
	LabelNegative = "Negative"
	LabelNeutral  = "Neutral"
)

const (
	positiveCutoff = 0.4
	negativeCutoff = -0.2
)

type SentimentAssessment struct {
	Label string
	Score float64
	Raw   string
}

// SentimentClassifier classifies HR feedback text.
type SentimentClassifier interface {
	Classify(ctx context.Context, text string) (*SentimentAssessment, error)
}

// LabelForScore maps a valence in [-1, 1] onto a sentiment label.
func LabelForScore(score float64) string {
	switch {
	case score >= positiveCutoff:
		return LabelPositive
	case score <= negativeCutoff:
		return LabelNegative
	default:
		return LabelNeutral
	}
}
