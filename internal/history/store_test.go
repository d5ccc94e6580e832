package history

import (
	"context"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"

	"github.com/T-USMANI24/hr-matcher/internal/decision"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testRecords() []decision.Record {
	return []decision.Record{
		{
			CVIndex: 1, CVName: "cv_1.txt", SimilarityPct: 85, SkillMatchPct: 90, DegreeMatch: true,
			MatchScorePct: 91.7, SentimentLabel: "Positive", SentimentScore: 0.9, Confidence: 100,
			Decision: "Hire", Explanation: "Sim=85.0%",
		},
		{
			CVIndex: 2, CVName: "cv_2.txt", SimilarityPct: math.NaN(), SkillMatchPct: 50,
			MatchScorePct: math.NaN(), SentimentLabel: "Neutral", Decision: "Reject",
			Explanation: "Degree mismatch", Gated: true,
		},
	}
}

func TestRecordRunAndDecisions(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	records := testRecords()
	run, err := store.RecordRun(ctx, RunParams{JD: "python developer", Epsilon: 0.15, LearningRate: 0.1}, records)
	if err != nil {
		t.Fatalf("record run: %v", err)
	}

	if _, err := uuid.Parse(run.ID); err != nil {
		t.Fatalf("expected uuid run id, got %q", run.ID)
	}
	if run.Candidates != 2 || run.Gated != 1 {
		t.Fatalf("unexpected run counts: %+v", run)
	}
	if run.JDHash != HashJD("python developer") {
		t.Fatalf("unexpected jd hash %s", run.JDHash)
	}

	got, err := store.Decisions(ctx, run.ID)
	if err != nil {
		t.Fatalf("decisions: %v", err)
	}
	if diff := cmp.Diff(records, got, cmpopts.EquateNaNs()); diff != "" {
		t.Fatalf("unexpected decisions (-want +got):\n%s", diff)
	}
}

func TestListRuns(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	var ids []string
	for _, jd := range []string{"first", "second", "third"} {
		run, err := store.RecordRun(ctx, RunParams{JD: jd, Epsilon: 0.1, LearningRate: 0.1}, testRecords())
		if err != nil {
			t.Fatalf("record run: %v", err)
		}
		ids = append(ids, run.ID)
	}

	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != ids[2] || runs[1].ID != ids[1] {
		t.Fatalf("expected newest runs first, got %s, %s", runs[0].ID, runs[1].ID)
	}
	if runs[0].CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be parsed")
	}

	all, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected default limit to return all 3 runs, got %d", len(all))
	}
}

func TestDecisionsUnknownRun(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.Decisions(context.Background(), uuid.New().String()); err == nil {
		t.Fatalf("expected error for unknown run")
	}
}

func TestListRunsRejectsBadTimestamp(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run, err := store.RecordRun(ctx, RunParams{JD: "jd"}, testRecords())
	if err != nil {
		t.Fatalf("record run: %v", err)
	}
	if _, err := store.db.ExecContext(ctx, `UPDATE runs SET created_at = 'yesterday' WHERE run_id = ?`, run.ID); err != nil {
		t.Fatalf("corrupt run: %v", err)
	}

	_, err = store.ListRuns(ctx, 0)
	if err == nil || !strings.Contains(err.Error(), "created_at") {
		t.Fatalf("expected created_at parse error, got %v", err)
	}
}
