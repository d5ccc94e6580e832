package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/T-USMANI24/hr-matcher/internal/decision"
	"github.com/T-USMANI24/hr-matcher/internal/features"
	"github.com/T-USMANI24/hr-matcher/internal/rl"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestReadCandidates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.txt"), "second")
	writeFile(t, filepath.Join(dir, "a.TXT"), "first")
	writeFile(t, filepath.Join(dir, "notes.md"), "ignored")
	if err := os.Mkdir(filepath.Join(dir, "nested.txt"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := readCandidates(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []decision.Candidate{{Name: "a.TXT", Text: "first"}, {Name: "b.txt", Text: "second"}}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Fatalf("unexpected candidates (-want +got):\n%s", diff)
	}
}

func TestReadFeedback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback.txt")
	writeFile(t, path, "Great fit\n\n  Weak on SQL  \r\nAverage\n")

	got, err := readFeedback(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff([]string{"Great fit", "Weak on SQL", "Average"}, got); diff != "" {
		t.Fatalf("unexpected feedback (-want +got):\n%s", diff)
	}
}

func TestCheckInputs(t *testing.T) {
	one := []decision.Candidate{{Name: "cv_1.txt", Text: "cv"}}

	tests := []struct {
		name       string
		candidates []decision.Candidate
		feedbacks  []string
		mismatch   bool
	}{
		{name: "paired", candidates: one, feedbacks: []string{"good"}},
		{name: "nothing", candidates: nil, feedbacks: nil},
		{name: "feedback without cvs", candidates: nil, feedbacks: []string{"good"}, mismatch: true},
		{name: "missing feedback", candidates: one, feedbacks: nil, mismatch: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkInputs(tt.candidates, tt.feedbacks)
			if tt.mismatch != errors.Is(err, decision.ErrBatchSizeMismatch) {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.mismatch && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func testPolicyConfig(dir string) *PolicyConfig {
	return &PolicyConfig{
		File:            filepath.Join(dir, "models", "q_table.json"),
		Actions:         []string{"Hire", "Reject", "Reassign"},
		PositiveActions: []string{"Hire"},
		LearningRate:    0.1,
		Epsilon:         0.15,
		Seed:            3,
	}
}

func TestLoadPolicySeedsFreshTable(t *testing.T) {
	cfg := testPolicyConfig(t.TempDir())

	table, err := loadPolicy(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if table.Len() != 3 || len(table.Rewards()) != 3 {
		t.Fatalf("expected the seed examples to be applied, got %d states and %d rewards", table.Len(), len(table.Rewards()))
	}
}

func TestLoadPolicySkipsSeedsForStoredTable(t *testing.T) {
	cfg := testPolicyConfig(t.TempDir())

	stored, err := rl.NewTable(cfg.Actions)
	if err != nil {
		t.Fatal(err)
	}
	key := rl.NewStateKey(0.9, rl.LabelSentiment("positive"), true, 0.9)
	if err := stored.Update(key, "Reassign", 1, 0.5); err != nil {
		t.Fatal(err)
	}
	if err := stored.Save(cfg.File); err != nil {
		t.Fatal(err)
	}

	table, err := loadPolicy(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if table.Len() != 1 || len(table.Rewards()) != 1 {
		t.Fatalf("expected only the stored state, got %d states and %d rewards", table.Len(), len(table.Rewards()))
	}
	if table.BestAction(key) != "Reassign" {
		t.Fatalf("expected stored values to be restored")
	}
}

func TestLoadPolicyRejectsMalformedFile(t *testing.T) {
	for _, content := range []string{"{not json", "null"} {
		t.Run(content, func(t *testing.T) {
			cfg := testPolicyConfig(t.TempDir())
			if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
				t.Fatal(err)
			}
			writeFile(t, cfg.File, content)

			if _, err := loadPolicy(cfg, zap.NewNop()); !errors.Is(err, rl.ErrMalformedSnapshot) {
				t.Fatalf("expected ErrMalformedSnapshot, got %v", err)
			}
		})
	}
}

func TestHandleAction(t *testing.T) {
	records := []decision.Record{{CVIndex: 1, CVName: "cv_1.txt", Decision: "Hire", Confidence: 100}}

	if err := handleAction(PromptExit, records, zap.NewNop()); !errors.Is(err, errExit) {
		t.Fatalf("expected errExit, got %v", err)
	}
	if err := handleAction(PromptSummary, records, zap.NewNop()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := handleAction("Hire everyone", records, zap.NewNop()); err == nil {
		t.Fatalf("expected error for unknown action")
	}
}

func TestWritePolicy(t *testing.T) {
	table, err := rl.NewTable([]string{"Hire", "Reject"})
	if err != nil {
		t.Fatal(err)
	}
	key := rl.NewStateKey(0.7, rl.ScoreSentiment(0.5), true, 0.1)
	if err := table.Update(key, "Hire", 1, 0.5); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := writePolicy(&out, table); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := out.String()
	for _, want := range []string{"Hire", "Reject", key.String(), "0.5000", "states: 1, rewards: 1"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output:\n%s", want, text)
		}
	}
}

func TestNewSentimentClassifier(t *testing.T) {
	classifier, err := newSentimentClassifier(context.Background(), &SentimentConfig{Provider: " Lexicon "}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := classifier.(features.Lexicon); !ok {
		t.Fatalf("expected lexicon classifier, got %T", classifier)
	}

	if _, err := newSentimentClassifier(context.Background(), &SentimentConfig{Provider: "vader"}, zap.NewNop()); err == nil {
		t.Fatalf("expected error for unsupported provider")
	}

	t.Setenv("GEMINI_API_KEY", "")
	_, err = newSentimentClassifier(context.Background(), &SentimentConfig{
		Provider: "gemini",
		Gemini:   &GeminiConfig{},
	}, zap.NewNop())
	if err == nil || !strings.Contains(err.Error(), "gemini api key") {
		t.Fatalf("expected missing api key error, got %v", err)
	}
}
