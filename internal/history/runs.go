package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Run statuses stored in the ledger.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Run is one pipeline invocation.
type Run struct {
	ID           string     `json:"id"`
	Input        string     `json:"input"`
	Fingerprint  string     `json:"fingerprint,omitempty"`
	OutputDir    string     `json:"output_dir,omitempty"`
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error,omitempty"`
	ErrorKind    string     `json:"error_kind,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	Stages       []Stage    `json:"stages"`
}

// Duration is the wall time of a finished run, or zero.
func (r Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Stage is one stage row of a run.
type Stage struct {
	Position     int           `json:"-"`
	Name         string        `json:"name"`
	Status       string        `json:"status"`
	Output       string        `json:"output,omitempty"`
	Succeeded    int           `json:"succeeded"`
	Total        int           `json:"total"`
	ErrorMessage string        `json:"error,omitempty"`
	Duration     time.Duration `json:"duration_ns"`
}

const runColumns = "id, input, fingerprint, output_dir, status, error_message, error_kind, started_at, finished_at"

// Begin inserts a running row. Beginning an existing run is a no-op.
func (s *Store) Begin(ctx context.Context, run Run) error {
	if run.ID == "" {
		return errors.New("run id is empty")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	err := s.exec(ctx,
		`INSERT INTO runs (id, input, fingerprint, output_dir, status, started_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO NOTHING`,
		run.ID,
		run.Input,
		nullableString(run.Fingerprint),
		nullableString(run.OutputDir),
		StatusRunning,
		formatTime(run.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

const upsertStageSQL = `INSERT INTO stages (run_id, position, name, status, output, succeeded, total, error_message, duration_ms)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(run_id, name) DO UPDATE SET
            position = excluded.position,
            status = excluded.status,
            output = excluded.output,
            succeeded = excluded.succeeded,
            total = excluded.total,
            error_message = excluded.error_message,
            duration_ms = excluded.duration_ms`

func stageArgs(runID string, stage Stage) []any {
	return []any{
		runID,
		stage.Position,
		stage.Name,
		stage.Status,
		nullableString(stage.Output),
		stage.Succeeded,
		stage.Total,
		nullableString(stage.ErrorMessage),
		stage.Duration.Milliseconds(),
	}
}

// RecordStage upserts one stage row.
func (s *Store) RecordStage(ctx context.Context, runID string, stage Stage) error {
	if err := s.exec(ctx, upsertStageSQL, stageArgs(runID, stage)...); err != nil {
		return fmt.Errorf("record stage %s: %w", stage.Name, err)
	}
	return nil
}

// Finish stores the terminal state of a run and all of its stages in one
// transaction, inserting the run when Begin was never reached (for example,
// a missing input).
func (s *Store) Finish(ctx context.Context, run Run) error {
	finished := time.Now()
	if run.FinishedAt != nil {
		finished = *run.FinishedAt
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = finished
	}
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO runs (id, input, fingerprint, output_dir, status, error_message, error_kind, started_at, finished_at)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
            ON CONFLICT(id) DO UPDATE SET
                status = excluded.status,
                error_message = excluded.error_message,
                error_kind = excluded.error_kind,
                finished_at = excluded.finished_at,
                fingerprint = COALESCE(runs.fingerprint, excluded.fingerprint)`,
			run.ID,
			run.Input,
			nullableString(run.Fingerprint),
			nullableString(run.OutputDir),
			run.Status,
			nullableString(run.ErrorMessage),
			nullableString(run.ErrorKind),
			formatTime(run.StartedAt),
			formatTime(finished),
		)
		if err != nil {
			return err
		}
		for _, stage := range run.Stages {
			if _, err := tx.ExecContext(ctx, upsertStageSQL, stageArgs(run.ID, stage)...); err != nil {
				return fmt.Errorf("stage %s: %w", stage.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// Get returns the run with id, or nil when absent.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	if err := s.loadStages(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// Recent returns up to limit runs, newest first. A limit <= 0 returns all.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	rows.Close()

	for i := range runs {
		if err := s.loadStages(ctx, &runs[i]); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// Prune deletes runs started before cutoff and returns how many were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, formatTime(cutoff))
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return removed, nil
}

func (s *Store) loadStages(ctx context.Context, run *Run) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT position, name, status, output, succeeded, total, error_message, duration_ms
        FROM stages WHERE run_id = ? ORDER BY position`, run.ID)
	if err != nil {
		return fmt.Errorf("list stages: %w", err)
	}
	defer rows.Close()

	run.Stages = run.Stages[:0]
	for rows.Next() {
		var (
			stage      Stage
			output     sql.NullString
			errMessage sql.NullString
			durationMs int64
		)
		if err := rows.Scan(&stage.Position, &stage.Name, &stage.Status, &output, &stage.Succeeded, &stage.Total, &errMessage, &durationMs); err != nil {
			return fmt.Errorf("scan stage: %w", err)
		}
		stage.Output = output.String
		stage.ErrorMessage = errMessage.String
		stage.Duration = time.Duration(durationMs) * time.Millisecond
		run.Stages = append(run.Stages, stage)
	}
	return rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run         Run
		fingerprint sql.NullString
		outputDir   sql.NullString
		errMessage  sql.NullString
		errKind     sql.NullString
		startedRaw  string
		finishedRaw sql.NullString
	)
	if err := scanner.Scan(&run.ID, &run.Input, &fingerprint, &outputDir, &run.Status, &errMessage, &errKind, &startedRaw, &finishedRaw); err != nil {
		return nil, err
	}
	run.Fingerprint = fingerprint.String
	run.OutputDir = outputDir.String
	run.ErrorMessage = errMessage.String
	run.ErrorKind = errKind.String
	run.StartedAt = parseTime(startedRaw)
	if finishedRaw.Valid && finishedRaw.String != "" {
		finished := parseTime(finishedRaw.String)
		run.FinishedAt = &finished
	}
	return &run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

// Timestamps are stored as fixed-width UTC strings so lexical order matches
// chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, raw)
	}
	return t
}
