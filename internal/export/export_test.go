package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/T-USMANI24/hr-matcher/internal/decision"
)

func sampleRecords() []decision.Record {
	return []decision.Record{
		{
			CVIndex: 1, CVName: "cv_1.txt",
			SimilarityPct: 85, SkillMatchPct: 90, DegreeMatch: true, MatchScorePct: 91.7,
			SentimentLabel: "Positive", SentimentScore: 0.9, Confidence: 100, Decision: "Hire",
			Explanation: "Sim=85.0%, Sentiment=Positive(0.90), DegreeMatch=true, Skills=90.0%, RL Action=Hire, RL Confidence=100.0%",
		},
		{
			CVIndex: 2, CVName: "cv_2.txt",
			SimilarityPct: 30, SkillMatchPct: 50, DegreeMatch: false, MatchScorePct: 26.7,
			SentimentLabel: "Neutral", SentimentScore: 0, Confidence: 0, Decision: "Reject",
			Explanation: "Degree mismatch", Gated: true,
		},
		{
			CVIndex: 3, CVName: "cv, \"3\".txt",
			SimilarityPct: math.NaN(), SkillMatchPct: 55.5, DegreeMatch: true, MatchScorePct: math.NaN(),
			SentimentLabel: "Negative", SentimentScore: -0.35, Confidence: -12.5, Decision: "Reassign",
			Explanation: "Sim=NaN%",
		},
	}
}

func TestCSVAndJSONCarryIdenticalValues(t *testing.T) {
	records := sampleRecords()

	var csvBuf, jsonBuf bytes.Buffer
	if err := WriteCSV(&csvBuf, records); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if err := WriteJSON(&jsonBuf, records); err != nil {
		t.Fatalf("write json: %v", err)
	}

	rows, err := csv.NewReader(&csvBuf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if diff := cmp.Diff(Columns, rows[0]); diff != "" {
		t.Fatalf("unexpected header (-want +got):\n%s", diff)
	}

	dec := json.NewDecoder(&jsonBuf)
	dec.UseNumber()
	var docs []map[string]any
	if err := dec.Decode(&docs); err != nil {
		t.Fatalf("read json: %v", err)
	}

	if len(rows)-1 != len(records) || len(docs) != len(records) {
		t.Fatalf("expected %d rows, got %d csv and %d json", len(records), len(rows)-1, len(docs))
	}

	for i, doc := range docs {
		fromJSON := make([]string, len(Columns))
		for j, col := range Columns {
			switch v := doc[col].(type) {
			case nil:
				fromJSON[j] = ""
			case json.Number:
				fromJSON[j] = v.String()
			case bool:
				fromJSON[j] = strconv.FormatBool(v)
			case string:
				fromJSON[j] = v
			default:
				t.Fatalf("unexpected json type %T for %s", v, col)
			}
		}
		if diff := cmp.Diff(rows[i+1], fromJSON); diff != "" {
			t.Fatalf("record %d differs between csv and json (-csv +json):\n%s", i+1, diff)
		}
	}

	if docs[2]["similarity_score_%"] != nil {
		t.Fatalf("expected missing similarity to be null, got %v", docs[2]["similarity_score_%"])
	}
}

func TestSaveReplacesFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	csvPath := filepath.Join(dir, "results.csv")
	jsonPath := filepath.Join(dir, "results.json")

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(csvPath, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	records := sampleRecords()
	if err := SaveCSV(csvPath, records); err != nil {
		t.Fatalf("save csv: %v", err)
	}
	if err := SaveJSON(jsonPath, records); err != nil {
		t.Fatalf("save json: %v", err)
	}

	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(data, []byte("stale")) {
		t.Fatalf("expected csv to be replaced")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected only the two exports, got %d entries", len(entries))
	}
}

func TestDumpToTmpFile(t *testing.T) {
	name, err := DumpToTmpFile(sampleRecords())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { os.Remove(name) })

	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	var docs []map[string]any
	if err := json.Unmarshal(data, &docs); err != nil {
		t.Fatalf("dump is not valid json: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(docs))
	}
}

func TestReportByDecision(t *testing.T) {
	report := ReportByDecision(sampleRecords())

	if len(report) != 3 {
		t.Fatalf("expected 3 decisions, got %d", len(report))
	}
	hire := report["Hire"]
	if len(hire) != 1 || hire[0]["cv"] != "cv_1.txt" || hire[0]["confidence"] != "100" {
		t.Fatalf("unexpected Hire group: %v", hire)
	}
	if report["Reassign"][0]["match_score"] != "" {
		t.Fatalf("expected missing match score to be empty, got %q", report["Reassign"][0]["match_score"])
	}
}

func TestSummarize(t *testing.T) {
	got := Summarize(sampleRecords())

	expected := Distribution{
		Sentiment:   map[string]int{"Positive": 1, "Neutral": 1, "Negative": 1},
		Decisions:   map[string]int{"Hire": 1, "Reject": 1, "Reassign": 1},
		DegreeMatch: map[string]int{"true": 2, "false": 1},
		SkillBands:  map[string]int{SkillBandHigh: 1, SkillBandMedium: 2},
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Fatalf("unexpected distribution (-want +got):\n%s", diff)
	}
}

func TestSkillBand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pct    float64
		expect string
	}{
		{pct: 100, expect: SkillBandHigh},
		{pct: 80, expect: SkillBandHigh},
		{pct: 79.9, expect: SkillBandMedium},
		{pct: 50, expect: SkillBandMedium},
		{pct: 49.9, expect: SkillBandLow},
		{pct: 0, expect: SkillBandLow},
		{pct: math.NaN(), expect: SkillBandUnknown},
	}

	for _, tt := range tests {
		t.Run(strconv.FormatFloat(tt.pct, 'f', -1, 64), func(t *testing.T) {
			t.Parallel()

			if got := SkillBand(tt.pct); got != tt.expect {
				t.Fatalf("expected %s, got %s", tt.expect, got)
			}
		})
	}
}
