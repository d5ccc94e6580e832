// Package history keeps a SQLite log of batch runs and their decisions.
package history

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/T-USMANI24/hr-matcher/internal/decision"
)

const defaultLimit = 20

// fixed width so that created_at sorts lexically
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id        TEXT PRIMARY KEY,
	created_at    TEXT NOT NULL,
	jd_hash       TEXT NOT NULL,
	candidates    INTEGER NOT NULL,
	gated         INTEGER NOT NULL,
	epsilon       REAL NOT NULL,
	learning_rate REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS decisions (
	run_id          TEXT NOT NULL,
	cv_index        INTEGER NOT NULL,
	cv_name         TEXT NOT NULL,
	similarity_pct  REAL,
	skill_match_pct REAL,
	degree_match    INTEGER NOT NULL,
	match_score_pct REAL,
	sentiment_label TEXT NOT NULL,
	sentiment_score REAL,
	confidence      REAL,
	decision        TEXT NOT NULL,
	gated           INTEGER NOT NULL,
	explanation     TEXT NOT NULL,
	PRIMARY KEY (run_id, cv_index),
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`

// Run describes one recorded batch.
type Run struct {
	ID           string
	CreatedAt    time.Time
	JDHash       string
	Candidates   int
	Gated        int
	Epsilon      float64
	LearningRate float64
}

// RunParams are the batch settings stored with a run.
type RunParams struct {
	JD           string
	Epsilon      float64
	LearningRate float64
}

// Store manages the decision history in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun stores the run and all its records in a single transaction.
func (s *Store) RecordRun(ctx context.Context, params RunParams, records []decision.Record) (Run, error) {
	run := Run{
		ID:           uuid.New().String(),
		CreatedAt:    time.Now().UTC(),
		JDHash:       HashJD(params.JD),
		Candidates:   len(records),
		Epsilon:      params.Epsilon,
		LearningRate: params.LearningRate,
	}
	for _, r := range records {
		if r.Gated {
			run.Gated++
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, created_at, jd_hash, candidates, gated, epsilon, learning_rate)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.Format(timeFormat), run.JDHash, run.Candidates, run.Gated, run.Epsilon, run.LearningRate,
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO decisions (run_id, cv_index, cv_name, similarity_pct, skill_match_pct, degree_match,
		 match_score_pct, sentiment_label, sentiment_score, confidence, decision, gated, explanation)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return Run{}, fmt.Errorf("prepare decision insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.ExecContext(ctx,
			run.ID, r.CVIndex, r.CVName,
			nullable(r.SimilarityPct), nullable(r.SkillMatchPct), r.DegreeMatch,
			nullable(r.MatchScorePct), r.SentimentLabel, nullable(r.SentimentScore),
			nullable(r.Confidence), r.Decision, r.Gated, r.Explanation,
		)
		if err != nil {
			return Run{}, fmt.Errorf("insert decision %d: %w", r.CVIndex, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("commit: %w", err)
	}

	return run, nil
}

// ListRuns returns the most recent runs first. A non-positive limit uses the default.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, created_at, jd_hash, candidates, gated, epsilon, learning_rate
		 FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var created string
		if err := rows.Scan(&run.ID, &created, &run.JDHash, &run.Candidates, &run.Gated, &run.Epsilon, &run.LearningRate); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		createdAt, err := time.Parse(timeFormat, created)
		if err != nil {
			return nil, fmt.Errorf("parse created_at of run %s: %w", run.ID, err)
		}
		run.CreatedAt = createdAt
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Decisions returns the records of a run in candidate order.
func (s *Store) Decisions(ctx context.Context, runID string) ([]decision.Record, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE run_id = ?`, runID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", runID, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT cv_index, cv_name, similarity_pct, skill_match_pct, degree_match, match_score_pct,
		 sentiment_label, sentiment_score, confidence, decision, gated, explanation
		 FROM decisions WHERE run_id = ? ORDER BY cv_index`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var records []decision.Record
	for rows.Next() {
		var r decision.Record
		var sim, skill, match, score, conf sql.NullFloat64
		err := rows.Scan(&r.CVIndex, &r.CVName, &sim, &skill, &r.DegreeMatch, &match,
			&r.SentimentLabel, &score, &conf, &r.Decision, &r.Gated, &r.Explanation)
		if err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		r.SimilarityPct = fromNullable(sim)
		r.SkillMatchPct = fromNullable(skill)
		r.MatchScorePct = fromNullable(match)
		r.SentimentScore = fromNullable(score)
		r.Confidence = fromNullable(conf)
		records = append(records, r)
	}
	return records, rows.Err()
}

// HashJD identifies a job description without storing its text.
func HashJD(jd string) string {
	sum := sha256.Sum256([]byte(jd))
	return hex.EncodeToString(sum[:])
}

func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func fromNullable(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
