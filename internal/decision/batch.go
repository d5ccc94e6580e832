package decision

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/T-USMANI24/hr-matcher/internal/features"
	"github.com/T-USMANI24/hr-matcher/internal/logger"
)

// ErrBatchSizeMismatch is returned when candidates and feedbacks differ in length.
var ErrBatchSizeMismatch = errors.New("number of candidates and feedbacks differ")

// Extractor computes features for a batch, preserving input order.
type Extractor interface {
	Extract(ctx context.Context, jd string, inputs []features.Input) ([]features.Extracted, error)
}

// Candidate is a CV to be decided.
type Candidate struct {
	Name string
	Text string
}

// Step summarizes one batch run.
type Step struct {
	Initial int
	Gated   int
	Decided int
}

// Result holds everything a batch produced.
type Result struct {
	Records   []Record
	Extracted []features.Extracted
	Step      Step
}

// Batch runs feature extraction and then decides every candidate in order.
type Batch struct {
	extractor Extractor
	engine    *Engine
	logger    *zap.Logger
}

func NewBatch(extractor Extractor, engine *Engine, log *zap.Logger) *Batch {
	return &Batch{
		extractor: extractor,
		engine:    engine,
		logger:    logger.WithFields(log),
	}
}

// Run decides candidates against jd. feedbacks[i] is the HR feedback for
// candidates[i]. Extraction may run in parallel; decisions and policy
// updates happen strictly in candidate order.
func (b *Batch) Run(ctx context.Context, jd string, candidates []Candidate, feedbacks []string) (*Result, error) {
	if len(candidates) != len(feedbacks) {
		return nil, fmt.Errorf("%w: %d candidates, %d feedbacks", ErrBatchSizeMismatch, len(candidates), len(feedbacks))
	}

	inputs := make([]features.Input, len(candidates))
	for i, c := range candidates {
		inputs[i] = features.Input{Name: c.Name, Text: c.Text, Feedback: feedbacks[i]}
	}

	extracted, err := b.extractor.Extract(ctx, jd, inputs)
	if err != nil {
		return nil, fmt.Errorf("extracting features: %w", err)
	}
	if len(extracted) != len(candidates) {
		return nil, fmt.Errorf("extracted %d feature sets for %d candidates", len(extracted), len(candidates))
	}

	result := &Result{
		Records:   make([]Record, 0, len(candidates)),
		Extracted: extracted,
		Step:      Step{Initial: len(candidates)},
	}

	for i, ex := range extracted {
		index := i + 1
		rec, err := b.engine.Decide(index, candidates[i].Name, ex.Features)
		if err != nil {
			return nil, err
		}

		if rec.Gated {
			result.Step.Gated++
		} else {
			result.Step.Decided++
		}
		result.Records = append(result.Records, rec)

		fields := append(logger.CandidateFields(index, rec.CVName), logger.DecisionFields(rec.Decision, rec.Confidence, rec.Explanation)...)
		b.logger.Info("candidate decided", fields...)
	}

	b.logger.Info("batch finished",
		zap.Int("initial", result.Step.Initial),
		zap.Int("gated", result.Step.Gated),
		zap.Int("decided", result.Step.Decided),
	)

	return result, nil
}
