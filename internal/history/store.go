package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// timeLayout is fixed-width so that stored timestamps sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const defaultListLimit = 20

// RunRecord is one finished automerge run
type RunRecord struct {
	ID            string    `json:"id"`
	Host          string    `json:"host"`
	Project       string    `json:"project"`
	IID           int       `json:"iid"`
	KeepBranch    bool      `json:"keep_branch"`
	Outcome       string    `json:"outcome"`
	FinalState    string    `json:"final_state"`
	PipelineState string    `json:"pipeline_state"`
	Polls         int       `json:"polls"`
	MergeAttempts int       `json:"merge_attempts"`
	Error         string    `json:"error,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
}

func (r RunRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	Project string
	IID     int
	Limit   int
}

type Store struct {
	db *sql.DB
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts rec. Recording the same run ID twice replaces the earlier row.
func (s *Store) Record(ctx context.Context, rec RunRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("failed to record run: missing id")
	}

	const query = `
		INSERT OR REPLACE INTO automerge_runs (
			id, host, project, iid, keep_branch, outcome, final_state, pipeline_state,
			polls, merge_attempts, error, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	keep := 0
	if rec.KeepBranch {
		keep = 1
	}

	if _, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.Host, rec.Project, rec.IID, keep, rec.Outcome, rec.FinalState, rec.PipelineState,
		rec.Polls, rec.MergeAttempts, rec.Error,
		formatTime(rec.StartedAt), formatTime(rec.FinishedAt),
	); err != nil {
		return fmt.Errorf("failed to record run %s: %w", rec.ID, err)
	}
	return nil
}

// List returns matching runs, newest first
func (s *Store) List(ctx context.Context, f Filter) ([]RunRecord, error) {
	var (
		where []string
		args  []any
	)
	if f.Project != "" {
		where = append(where, "project = ?")
		args = append(args, f.Project)
	}
	if f.IID > 0 {
		where = append(where, "iid = ?")
		args = append(args, f.IID)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `
		SELECT id, host, project, iid, keep_branch, outcome, final_state, pipeline_state,
			polls, merge_attempts, error, started_at, finished_at
		FROM automerge_runs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY started_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query run history: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to read run history: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read run history: %w", err)
	}
	return records, nil
}

func scanRun(rows *sql.Rows) (RunRecord, error) {
	var (
		rec                   RunRecord
		keep                  int
		startedAt, finishedAt string
	)
	err := rows.Scan(
		&rec.ID, &rec.Host, &rec.Project, &rec.IID, &keep, &rec.Outcome, &rec.FinalState, &rec.PipelineState,
		&rec.Polls, &rec.MergeAttempts, &rec.Error, &startedAt, &finishedAt,
	)
	if err != nil {
		return RunRecord{}, err
	}
	rec.KeepBranch = keep != 0

	if rec.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
		return RunRecord{}, fmt.Errorf("parse started_at: %w", err)
	}
	if rec.FinishedAt, err = time.Parse(timeLayout, finishedAt); err != nil {
		return RunRecord{}, fmt.Errorf("parse finished_at: %w", err)
	}
	return rec, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
