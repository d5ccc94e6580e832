// Package export writes decision records as CSV and JSON and builds the
// textual reports shown after a run.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/T-USMANI24/hr-matcher/internal/decision"
)

// Columns is the field order of both export formats.
var Columns = []string{
	"cv_index",
	"cv_name",
	"similarity_score_%",
	"skill_match_%",
	"degree_match",
	"match_score_%",
	"sentiment_label",
	"sentiment_score",
	"rl_confidence_%",
	"decision",
	"explanation",
}

// row is the JSON shape of a record. Missing numbers become null.
type row struct {
	CVIndex        int      `json:"cv_index"`
	CVName         string   `json:"cv_name"`
	SimilarityPct  *float64 `json:"similarity_score_%"`
	SkillMatchPct  *float64 `json:"skill_match_%"`
	DegreeMatch    bool     `json:"degree_match"`
	MatchScorePct  *float64 `json:"match_score_%"`
	SentimentLabel string   `json:"sentiment_label"`
	SentimentScore *float64 `json:"sentiment_score"`
	Confidence     *float64 `json:"rl_confidence_%"`
	Decision       string   `json:"decision"`
	Explanation    string   `json:"explanation"`
}

func toRow(r decision.Record) row {
	return row{
		CVIndex:        r.CVIndex,
		CVName:         r.CVName,
		SimilarityPct:  number(r.SimilarityPct),
		SkillMatchPct:  number(r.SkillMatchPct),
		DegreeMatch:    r.DegreeMatch,
		MatchScorePct:  number(r.MatchScorePct),
		SentimentLabel: r.SentimentLabel,
		SentimentScore: number(r.SentimentScore),
		Confidence:     number(r.Confidence),
		Decision:       r.Decision,
		Explanation:    r.Explanation,
	}
}

func number(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func formatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteCSV writes a header and one row per record.
func WriteCSV(w io.Writer, records []decision.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}

	for _, r := range records {
		err := cw.Write([]string{
			strconv.Itoa(r.CVIndex),
			r.CVName,
			formatNumber(r.SimilarityPct),
			formatNumber(r.SkillMatchPct),
			strconv.FormatBool(r.DegreeMatch),
			formatNumber(r.MatchScorePct),
			r.SentimentLabel,
			formatNumber(r.SentimentScore),
			formatNumber(r.Confidence),
			r.Decision,
			r.Explanation,
		})
		if err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the records as an indented JSON array.
func WriteJSON(w io.Writer, records []decision.Record) error {
	rows := make([]row, len(records))
	for i, r := range records {
		rows[i] = toRow(r)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// SaveCSV writes the CSV export to path, replacing it atomically.
func SaveCSV(path string, records []decision.Record) error {
	return writeFile(path, func(w io.Writer) error { return WriteCSV(w, records) })
}

// SaveJSON writes the JSON export to path, replacing it atomically.
func SaveJSON(path string, records []decision.Record) error {
	return writeFile(path, func(w io.Writer) error { return WriteJSON(w, records) })
}

// DumpToTmpFile writes the JSON export to a new temporary file and returns its name.
func DumpToTmpFile(records []decision.Record) (string, error) {
	file, err := os.CreateTemp("", "decisions_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := WriteJSON(file, records); err != nil {
		return "", err
	}
	return file.Name(), nil
}

func writeFile(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary export file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
