// Package training warms up a fresh policy with labelled examples.
package training

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/T-USMANI24/hr-matcher/internal/rl"
)

//go:embed seeds.yaml
var defaultSeeds []byte

// Example is one labelled (features, action, reward) observation.
type Example struct {
	Similarity  float64 `yaml:"similarity"`
	Sentiment   string  `yaml:"sentiment"`
	DegreeMatch bool    `yaml:"degree_match"`
	SkillMatch  float64 `yaml:"skill_match"`
	Action      string  `yaml:"action"`
	Reward      float64 `yaml:"reward"`
}

type seedFile struct {
	Examples []Example `yaml:"examples"`
}

// Updater is the part of the policy that training needs.
type Updater interface {
	Update(key rl.StateKey, action string, reward, learningRate float64) error
}

// StateKey is the policy address of the example.
func (e Example) StateKey() rl.StateKey {
	return rl.NewStateKey(e.Similarity, rl.LabelSentiment(e.Sentiment), e.DegreeMatch, e.SkillMatch)
}

// Default returns the built-in examples.
func Default() ([]Example, error) {
	return Parse(defaultSeeds)
}

// Load reads examples from path, or the built-in examples when path is empty.
func Load(path string) ([]Example, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}

	examples, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return examples, nil
}

// Parse decodes a seed document.
func Parse(data []byte) ([]Example, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seeds: %w", err)
	}

	for i, ex := range f.Examples {
		if strings.TrimSpace(ex.Action) == "" {
			return nil, fmt.Errorf("seed example %d: action is required", i+1)
		}
	}

	return f.Examples, nil
}

// Apply updates the policy once per example, in order.
func Apply(policy Updater, examples []Example, learningRate float64) error {
	if policy == nil {
		return errors.New("policy is required")
	}

	for i, ex := range examples {
		if err := policy.Update(ex.StateKey(), ex.Action, ex.Reward, learningRate); err != nil {
			return fmt.Errorf("seed example %d: %w", i+1, err)
		}
	}
	return nil
}
