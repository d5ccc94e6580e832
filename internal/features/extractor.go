package features

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/T-USMANI24/hr-matcher/internal/ai"
	"github.com/T-USMANI24/hr-matcher/internal/rl"
)

const defaultWorkers = 4

// Input is one candidate of a batch.
type Input struct {
	Name     string
	Text     string
	Feedback string
}

// Extracted is the feature set of one candidate together with its parsed CV.
type Extracted struct {
	Candidate Candidate
	Features  Features
}

// Extractor computes features for a whole batch. Similarity and job
// requirements are computed once; CV parsing and sentiment run in parallel.
type Extractor struct {
	similarity Similarity
	sentiment  ai.SentimentClassifier
	workers    int
	logger     *zap.Logger
}

// NewExtractor creates an extractor. Nil collaborators fall back to TFIDF
// and Lexicon.
func NewExtractor(similarity Similarity, sentiment ai.SentimentClassifier, workers int, logger *zap.Logger) *Extractor {
	if similarity == nil {
		similarity = TFIDF{}
	}
	if sentiment == nil {
		sentiment = Lexicon{}
	}
	if workers <= 0 {
		workers = defaultWorkers
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Extractor{
		similarity: similarity,
		sentiment:  sentiment,
		workers:    workers,
		logger:     logger,
	}
}

// Extract returns one entry per input, in input order.
func (e *Extractor) Extract(ctx context.Context, jd string, inputs []Input) ([]Extracted, error) {
	texts := make([]string, len(inputs))
	for i, in := range inputs {
		texts[i] = in.Text
	}

	scores := e.similarity.Scores(texts, jd)
	if len(scores) != len(inputs) {
		return nil, fmt.Errorf("similarity returned %d scores for %d candidates", len(scores), len(inputs))
	}

	req := ExtractRequirements(jd)
	e.logger.Debug("job requirements",
		zap.String("domain", req.Domain),
		zap.Strings("degrees", req.Degrees),
		zap.Strings("skills", req.Skills),
	)

	out := make([]Extracted, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, in := range inputs {
		g.Go(func() error {
			assessment, err := e.classify(gctx, in)
			if err != nil {
				return err
			}

			cand := ParseCandidate(in.Name, in.Text)
			out[i] = Extracted{
				Candidate: cand,
				Features: Features{
					Similarity:     scores[i],
					Sentiment:      rl.LabelSentiment(assessment.Label),
					SentimentScore: assessment.Score,
					DegreeMatch:    DegreeMatch(cand, req),
					SkillMatch:     SkillMatch(cand, req),
				},
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// classify never fails on classifier errors: the candidate falls back to a
// neutral sentiment. Only cancellation is returned.
func (e *Extractor) classify(ctx context.Context, in Input) (*ai.SentimentAssessment, error) {
	assessment, err := e.sentiment.Classify(ctx, in.Feedback)
	if err == nil && assessment != nil {
		return assessment, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	e.logger.Warn("sentiment classification failed; using neutral",
		zap.String("cv_name", in.Name),
		zap.Error(err),
	)
	return &ai.SentimentAssessment{Label: ai.LabelNeutral, Score: 0}, nil
}
