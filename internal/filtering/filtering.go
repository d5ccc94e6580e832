package filtering

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/T-USMANI24/hr-matcher/internal/features"
)

// ActionReject is the action forced by every rule.
const ActionReject = "Reject"

// ErrInvalidThreshold is returned by Validate for thresholds outside [0, 1].
var ErrInvalidThreshold = errors.New("threshold must be within [0, 1]")

// Rule is a single hard filter applied before the policy is consulted.
type Rule interface {
	Name() string
	Validate() error
	// Check returns a verdict and true when the candidate must be rejected.
	Check(f features.Features) (Verdict, bool)
}

// Verdict is a forced decision produced by a rule.
type Verdict struct {
	Rule        string
	Action      string
	Confidence  float64
	Explanation string
}

// Thresholds configures the numeric rules.
type Thresholds struct {
	Similarity float64
	SkillMatch float64
}

// Status represents runtime information about a rule.
type Status struct {
	Name    string
	Details map[string]string
}

// statusProvider is implemented by rules that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// Gate runs rules in order; the first rule that fires wins.
type Gate struct {
	rules  []Rule
	logger *zap.Logger
}

// New builds the standard gate: degree, then skills, then similarity.
func New(th Thresholds, logger *zap.Logger) (*Gate, error) {
	return NewWithRules(logger, NewDegree(), NewSkillMatch(th.SkillMatch), NewSimilarity(th.Similarity))
}

// NewWithRules builds a gate from an explicit rule order.
func NewWithRules(logger *zap.Logger, rules ...Rule) (*Gate, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", r.Name(), err)
		}
	}

	return &Gate{rules: rules, logger: logger}, nil
}

// Evaluate returns the verdict of the first rule that fires, or nil.
func (g *Gate) Evaluate(f features.Features) *Verdict {
	for _, r := range g.rules {
		verdict, fired := r.Check(f)
		if !fired {
			continue
		}

		g.logger.Debug("hard filter fired",
			zap.String("rule", r.Name()),
			zap.String("explanation", verdict.Explanation),
		)
		return &verdict
	}

	return nil
}

// Describe returns status entries for the gate's rules.
func (g *Gate) Describe() []Status {
	statuses := make([]Status, 0, len(g.rules))
	for _, r := range g.rules {
		if reporter, ok := r.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{Name: r.Name()})
	}
	return statuses
}

func reject(rule, explanation string) Verdict {
	return Verdict{
		Rule:        rule,
		Action:      ActionReject,
		Confidence:  0,
		Explanation: explanation,
	}
}

func validateThreshold(v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidThreshold, v)
	}
	return nil
}
