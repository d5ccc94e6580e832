// Package decision combines the hard-filter gate with the learned policy and
// turns candidate features into decision records.
package decision

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"

	"go.uber.org/zap"

	"github.com/T-USMANI24/hr-matcher/internal/features"
	"github.com/T-USMANI24/hr-matcher/internal/filtering"
	"github.com/T-USMANI24/hr-matcher/internal/logger"
	"github.com/T-USMANI24/hr-matcher/internal/rl"
)

// Policy is the subset of the Q-table used by the engine.
type Policy interface {
	Actions() []string
	ChooseAction(key rl.StateKey, epsilon float64) string
	Values(key rl.StateKey) rl.Values
	Update(key rl.StateKey, action string, reward, learningRate float64) error
}

var _ Policy = (*rl.Table)(nil)

// RewardFunc assigns the reward for choosing action on the given features.
type RewardFunc func(action string, f features.Features) float64

// Config tunes the online learning of the engine.
type Config struct {
	Epsilon      float64
	LearningRate float64
	// PositiveActions earn a reward of 1 under the default reward rule.
	PositiveActions []string
	// Reward overrides the default reward rule when set.
	Reward RewardFunc
}

// Engine decides candidates one at a time and updates the policy after
// every non-gated decision. It is not safe for concurrent use.
type Engine struct {
	policy       Policy
	gate         *filtering.Gate
	epsilon      float64
	learningRate float64
	reward       RewardFunc
	logger       *zap.Logger
}

// NewEngine validates cfg against the policy's actions.
func NewEngine(policy Policy, gate *filtering.Gate, cfg Config, log *zap.Logger) (*Engine, error) {
	if policy == nil {
		return nil, errors.New("policy is required")
	}
	if gate == nil {
		return nil, errors.New("gate is required")
	}
	if math.IsNaN(cfg.Epsilon) || cfg.Epsilon < 0 || cfg.Epsilon > 1 {
		return nil, fmt.Errorf("epsilon must be within [0, 1], got %v", cfg.Epsilon)
	}
	if math.IsNaN(cfg.LearningRate) || cfg.LearningRate <= 0 || cfg.LearningRate > 1 {
		return nil, fmt.Errorf("learning rate must be within (0, 1], got %v", cfg.LearningRate)
	}

	actions := policy.Actions()
	for _, a := range cfg.PositiveActions {
		if !slices.Contains(actions, a) {
			return nil, fmt.Errorf("positive action %q: %w", a, rl.ErrInvalidAction)
		}
	}

	reward := cfg.Reward
	if reward == nil {
		reward = PositiveReward(cfg.PositiveActions)
	}

	return &Engine{
		policy:       policy,
		gate:         gate,
		epsilon:      cfg.Epsilon,
		learningRate: cfg.LearningRate,
		reward:       reward,
		logger:       logger.WithFields(log),
	}, nil
}

// PositiveReward returns 1 for actions in positive and 0 otherwise.
func PositiveReward(positive []string) RewardFunc {
	set := slices.Clone(positive)
	return func(action string, _ features.Features) float64 {
		if slices.Contains(set, action) {
			return 1
		}
		return 0
	}
}

// Decide produces the record for candidate index (1-based). A gated
// candidate never touches the policy. Policy update failures are returned.
func (e *Engine) Decide(index int, name string, f features.Features) (Record, error) {
	rec := newRecord(index, name, f)

	if verdict := e.gate.Evaluate(f); verdict != nil {
		rec.Decision = verdict.Action
		rec.Confidence = verdict.Confidence
		rec.Explanation = verdict.Explanation
		rec.Gated = true
		return rec, nil
	}

	key := f.StateKey()
	action := e.policy.ChooseAction(key, e.epsilon)
	values := e.policy.Values(key)
	confidence := Confidence(values, action)

	rec.Decision = action
	rec.Confidence = confidence
	rec.Explanation = explain(f, action, formatConfidence(values, confidence))

	reward := e.reward(action, f)
	if err := e.policy.Update(key, action, reward, e.learningRate); err != nil {
		return Record{}, fmt.Errorf("updating policy for candidate %d: %w", index, err)
	}

	e.logger.Debug("policy updated",
		zap.Stringer("state", key),
		zap.String("action", action),
		zap.Float64("reward", reward),
	)

	return rec, nil
}

// Confidence is the value of action as a percentage of the best value in
// values, rounded to one decimal. It is 0 when the best value is 0 and is
// not clamped: an explored action can score below 0 or above 100.
func Confidence(values rl.Values, action string) float64 {
	best := bestValue(values)
	if best == 0 {
		return 0
	}

	return round(values[action]/best*100, 1)
}

// bestValue is the largest value, or 0 for an empty set.
func bestValue(values rl.Values) float64 {
	if len(values) == 0 {
		return 0
	}

	best := math.Inf(-1)
	for _, v := range values {
		best = max(best, v)
	}
	return best
}

// formatConfidence prints a bare 0 when there is no best value to compare against.
func formatConfidence(values rl.Values, confidence float64) string {
	if bestValue(values) == 0 {
		return "0"
	}
	return strconv.FormatFloat(confidence, 'f', 1, 64)
}

func explain(f features.Features, action, confidence string) string {
	return fmt.Sprintf("Sim=%.1f%%, Sentiment=%s(%.2f), DegreeMatch=%t, Skills=%.1f%%, RL Action=%s, RL Confidence=%s%%",
		f.Similarity*100,
		f.Sentiment,
		f.SentimentScore,
		f.DegreeMatch,
		f.SkillMatch*100,
		action,
		confidence,
	)
}
