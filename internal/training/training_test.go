package training

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/T-USMANI24/hr-matcher/internal/rl"
)

func TestDefault(t *testing.T) {
	examples, err := Default()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []Example{
		{Similarity: 0.85, Sentiment: "Positive", DegreeMatch: true, SkillMatch: 1, Action: "Hire", Reward: 10},
		{Similarity: 0.20, Sentiment: "Negative", DegreeMatch: false, SkillMatch: 0, Action: "Reject", Reward: 9},
		{Similarity: 0.60, Sentiment: "Neutral", DegreeMatch: true, SkillMatch: 0, Action: "Reassign", Reward: 6},
	}
	if diff := cmp.Diff(expected, examples); diff != "" {
		t.Fatalf("unexpected seeds (-want +got):\n%s", diff)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	custom := filepath.Join(dir, "seeds.yaml")
	doc := "examples:\n  - similarity: 0.7\n    sentiment: positive\n    degree_match: true\n    skill_match: 0.8\n    action: Hire\n    reward: 5\n"
	if err := os.WriteFile(custom, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	noAction := filepath.Join(dir, "no-action.yaml")
	if err := os.WriteFile(noAction, []byte("examples:\n  - similarity: 0.7\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	broken := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(broken, []byte("examples: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("custom", func(t *testing.T) {
		examples, err := Load(custom)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(examples) != 1 || examples[0].Action != "Hire" || examples[0].SkillMatch != 0.8 {
			t.Fatalf("unexpected examples: %+v", examples)
		}
	})

	t.Run("empty path uses defaults", func(t *testing.T) {
		examples, err := Load(" ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(examples) != 3 {
			t.Fatalf("expected 3 default examples, got %d", len(examples))
		}
	})

	for name, path := range map[string]string{
		"missing action": noAction,
		"invalid yaml":   broken,
		"missing file":   filepath.Join(dir, "absent.yaml"),
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(path); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestApply(t *testing.T) {
	table, err := rl.NewTable([]string{"Hire", "Reject", "Reassign"})
	if err != nil {
		t.Fatal(err)
	}

	examples, err := Default()
	if err != nil {
		t.Fatal(err)
	}

	if err := Apply(table, examples, 0.1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if table.Len() != 3 {
		t.Fatalf("expected 3 trained states, got %d", table.Len())
	}

	hire := examples[0].StateKey()
	expectedKey := rl.StateKey{Similarity: rl.SimHigh, Sentiment: rl.Positive, DegreeMatch: true, Skill: rl.SkillHigh}
	if hire != expectedKey {
		t.Fatalf("unexpected key %s", hire)
	}
	if got := table.Values(hire)["Hire"]; math.Abs(got-1) > 1e-9 {
		t.Fatalf("expected Hire value 1, got %v", got)
	}
	if table.BestAction(examples[1].StateKey()) != "Reject" {
		t.Fatalf("expected Reject to be learned for the weak example")
	}
	if diff := cmp.Diff([]float64{10, 9, 6}, table.Rewards()); diff != "" {
		t.Fatalf("unexpected rewards (-want +got):\n%s", diff)
	}
}

func TestApplyUnknownAction(t *testing.T) {
	table, err := rl.NewTable([]string{"Hire", "Reject"})
	if err != nil {
		t.Fatal(err)
	}

	err = Apply(table, []Example{{Similarity: 0.5, Action: "Reassign"}}, 0.1)
	if !errors.Is(err, rl.ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
}
