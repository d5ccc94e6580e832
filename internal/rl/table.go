package rl

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"
)

// ErrInvalidAction is returned when an action is not part of the configured action set.
var ErrInvalidAction = errors.New("invalid action")

// Values maps action names to their value estimates.
type Values map[string]float64

// Table is a tabular policy over discretized states. It is not safe for
// concurrent use; callers serialize access.
type Table struct {
	actions []string
	entries map[StateKey]Values
	// insertion order, used for snapshots and listings
	order   []StateKey
	rewards []float64
	rng     *rand.Rand
}

// Option configures a Table.
type Option func(*Table)

// WithSeed makes exploration reproducible.
func WithSeed(seed uint64) Option {
	return func(t *Table) {
		t.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithRand sets the random source used for exploration.
func WithRand(rng *rand.Rand) Option {
	return func(t *Table) {
		if rng != nil {
			t.rng = rng
		}
	}
}

// NewTable creates an empty table over the given ordered action set.
func NewTable(actions []string, opts ...Option) (*Table, error) {
	if len(actions) == 0 {
		return nil, errors.New("at least one action is required")
	}

	seen := make(map[string]struct{}, len(actions))
	for _, a := range actions {
		if a == "" {
			return nil, errors.New("action name must not be empty")
		}
		if _, ok := seen[a]; ok {
			return nil, fmt.Errorf("duplicate action %q", a)
		}
		seen[a] = struct{}{}
	}

	now := uint64(time.Now().UnixNano())
	t := &Table{
		actions: slices.Clone(actions),
		entries: make(map[StateKey]Values),
		rng:     rand.New(rand.NewPCG(now, now>>1)),
	}
	for _, opt := range opts {
		opt(t)
	}

	return t, nil
}

// Actions returns the configured actions in order.
func (t *Table) Actions() []string {
	return slices.Clone(t.actions)
}

// HasAction reports whether action belongs to the configured set.
func (t *Table) HasAction(action string) bool {
	return slices.Contains(t.actions, action)
}

// Len returns the number of visited states.
func (t *Table) Len() int {
	return len(t.order)
}

// Keys returns visited states in first-visit order.
func (t *Table) Keys() []StateKey {
	return slices.Clone(t.order)
}

// Ensure creates a zeroed entry for key if it is missing.
func (t *Table) Ensure(key StateKey) {
	if _, ok := t.entries[key]; ok {
		return
	}
	t.entries[key] = t.zero()
	t.order = append(t.order, key)
}

// Values returns a copy of the entry for key, or all zeros when the state
// was never visited. It never creates an entry.
func (t *Table) Values(key StateKey) Values {
	entry, ok := t.entries[key]
	if !ok {
		return t.zero()
	}

	out := make(Values, len(entry))
	for a, v := range entry {
		out[a] = v
	}
	return out
}

// Visited reports whether key has an entry.
func (t *Table) Visited(key StateKey) bool {
	_, ok := t.entries[key]
	return ok
}

// ChooseAction picks a uniformly random action with probability epsilon and
// the best known action otherwise. The entry is created if missing. Ties go
// to the action listed first.
func (t *Table) ChooseAction(key StateKey, epsilon float64) string {
	t.Ensure(key)

	if t.rng.Float64() < epsilon {
		return t.actions[t.rng.IntN(len(t.actions))]
	}

	return t.BestAction(key)
}

// BestAction returns the greedy action for key without exploring or mutating.
func (t *Table) BestAction(key StateKey) string {
	entry, ok := t.entries[key]
	if !ok {
		return t.actions[0]
	}

	best := t.actions[0]
	for _, a := range t.actions[1:] {
		if entry[a] > entry[best] {
			best = a
		}
	}
	return best
}

// Update moves the value of (key, action) toward reward:
// new = old + lr * (reward - old). The reward is appended to the log.
func (t *Table) Update(key StateKey, action string, reward, learningRate float64) error {
	if !t.HasAction(action) {
		return fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	t.Ensure(key)

	old := t.entries[key][action]
	t.entries[key][action] = old + learningRate*(reward-old)
	t.rewards = append(t.rewards, reward)

	return nil
}

// Rewards returns a copy of the reward log.
func (t *Table) Rewards() []float64 {
	return slices.Clone(t.rewards)
}

func (t *Table) zero() Values {
	v := make(Values, len(t.actions))
	for _, a := range t.actions {
		v[a] = 0
	}
	return v
}
