package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"tvcut/internal/services"
)

// Status is the lifecycle state of a recorded run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Run is one pipeline invocation against a recording.
type Run struct {
	ID             string    `json:"id"`
	Source         string    `json:"source"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at,omitzero"`
	Status         Status    `json:"status"`
	Strategy       string    `json:"strategy,omitempty"`
	Segments       int       `json:"segments"`
	FinalDuration  float64   `json:"final_duration"`
	RemovedSeconds float64   `json:"removed_seconds"`
	ManifestPath   string    `json:"manifest_path,omitempty"`
	ErrorMessage   string    `json:"error_message,omitempty"`
}

// Finished reports whether the run reached a terminal state.
func (r Run) Finished() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}

// Outcome carries the fields written when a run finishes.
type Outcome struct {
	Strategy       string
	Segments       int
	FinalDuration  float64
	RemovedSeconds float64
	ManifestPath   string
	Err            error
}

// BeginRun records a running entry for id.
func (s *Store) BeginRun(ctx context.Context, id, source string) error {
	if strings.TrimSpace(id) == "" {
		return services.Wrap(services.ErrValidation, "store", "begin run", "run id required", nil)
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO runs (id, source, started_at, status) VALUES (?, ?, ?, ?)`,
		id, source, formatTime(s.now()), StatusRunning,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun marks id completed, or failed when outcome.Err is set.
func (s *Store) FinishRun(ctx context.Context, id string, outcome Outcome) error {
	status := StatusCompleted
	message := ""
	if outcome.Err != nil {
		status = StatusFailed
		message = outcome.Err.Error()
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE runs
            SET finished_at = ?, status = ?, strategy = ?, segments = ?,
                final_duration = ?, removed_seconds = ?, manifest_path = ?, error_message = ?
          WHERE id = ?`,
		formatTime(s.now()), status, outcome.Strategy, outcome.Segments,
		outcome.FinalDuration, outcome.RemovedSeconds, outcome.ManifestPath, message,
		id,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return services.Wrap(services.ErrNotFound, "store", "finish run", fmt.Sprintf("run %s", id), nil)
	}
	return nil
}

const runColumns = `id, source, started_at, COALESCE(finished_at, ''), status, strategy,
       segments, final_duration, removed_seconds, manifest_path, error_message`

// GetRun loads a run by id, or by a unique id prefix.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? ORDER BY id LIMIT 2`,
		id, id+"%",
	)
	if err != nil {
		return Run{}, fmt.Errorf("query run: %w", err)
	}
	defer rows.Close()
	runs, err := scanRuns(rows)
	if err != nil {
		return Run{}, err
	}
	for _, run := range runs {
		if run.ID == id {
			return run, nil
		}
	}
	switch len(runs) {
	case 0:
		return Run{}, services.Wrap(services.ErrNotFound, "store", "get run", fmt.Sprintf("run %s", id), nil)
	case 1:
		return runs[0], nil
	default:
		return Run{}, services.Wrap(services.ErrValidation, "store", "get run",
			fmt.Sprintf("run prefix %q is ambiguous", id), nil)
	}
}

// ListRuns returns the most recent runs first. A non-empty source filters
// to that recording; limit <= 0 returns everything.
func (s *Store) ListRuns(ctx context.Context, source string, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []any
	if source != "" {
		query += ` WHERE source = ?`
		args = append(args, source)
	}
	query += ` ORDER BY started_at DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	var runs []Run
	for rows.Next() {
		var (
			run      Run
			started  string
			finished string
			status   string
		)
		if err := rows.Scan(&run.ID, &run.Source, &started, &finished, &status, &run.Strategy,
			&run.Segments, &run.FinalDuration, &run.RemovedSeconds, &run.ManifestPath, &run.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = parseTime(started)
		run.FinishedAt = parseTime(finished)
		run.Status = Status(status)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
