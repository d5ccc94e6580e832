package features

import (
	"context"
	"maps"
	"math"
	"strings"
	"sync"

	"github.com/jonreiter/govader"

	"github.com/T-USMANI24/hr-matcher/internal/ai"
)

// interview vocabulary layered over the stock VADER lexicon
var hrLexicon = map[string]float64{
	"poor": -2.0, "weak": -1.8, "unprepared": -2.0,
	"disorganized": -1.7, "hesitant": -1.5, "lacked": -1.5,
	"confusing": -1.6, "vague": -1.4, "defensive": -1.5,
	"uninterested": -1.8, "monotone": -1.6, "failed": -2.2,
	"confident": 1.8, "enthusiastic": 2.0, "articulate": 1.7,
	"prepared": 1.6, "engaging": 1.8, "insightful": 1.9,
	"impressive": 2.0, "strong": 1.5, "excellent": 2.2,
	"clear": 1.6, "thoughtful": 1.7, "professional": 1.5,
}

// loading the VADER lexicon is costly; the analyzer is read-only afterwards
var analyzer = sync.OnceValue(func() *govader.SentimentIntensityAnalyzer {
	sia := govader.NewSentimentIntensityAnalyzer()
	maps.Copy(sia.Lexicon, hrLexicon)
	return sia
})

// Lexicon is a VADER valence classifier for short feedback text.
type Lexicon struct{}

var _ ai.SentimentClassifier = Lexicon{}

func (Lexicon) Classify(_ context.Context, text string) (*ai.SentimentAssessment, error) {
	score := CompoundScore(text)
	return &ai.SentimentAssessment{
		Label: ai.LabelForScore(score),
		Score: round(score, 2),
		Raw:   text,
	}, nil
}

// CompoundScore returns the VADER compound valence of text, in [-1, 1].
func CompoundScore(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	return analyzer().PolarityScores(text).Compound
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
