package history

import (
	"context"
	"log/slog"

	"chunkscribe/internal/fileutil"
	"chunkscribe/internal/logging"
	"chunkscribe/internal/pipeline"
)

// Recorder writes pipeline progress to a Store. Ledger failures are logged
// and never fail the run.
type Recorder struct {
	store       *Store
	logger      *slog.Logger
	fingerprint func(path string) (string, error)
}

// NewRecorder constructs a Recorder.
func NewRecorder(store *Store, logger *slog.Logger) *Recorder {
	return &Recorder{
		store:       store,
		logger:      logging.NewComponentLogger(logger, "history"),
		fingerprint: fileutil.Fingerprint,
	}
}

var _ pipeline.Observer = (*Recorder)(nil)

// RunStarted implements pipeline.Observer.
func (r *Recorder) RunStarted(ctx context.Context, report pipeline.Report) {
	run := runFromReport(report)
	run.Status = StatusRunning
	if sum, err := r.fingerprint(report.Input); err == nil {
		run.Fingerprint = sum
	} else {
		logging.WarnWithContext(logging.WithContext(ctx, r.logger), "input fingerprint failed", "fingerprint_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run recorded without an input fingerprint"),
			logging.String(logging.FieldErrorHint, "check that the input is readable"),
		)
	}
	if err := r.store.Begin(ctx, run); err != nil {
		r.warn(ctx, err)
	}
}

// StageFinished implements pipeline.Observer.
func (r *Recorder) StageFinished(ctx context.Context, report pipeline.Report, stage pipeline.StageReport) {
	position := 0
	for i, s := range report.Stages {
		if s.Name == stage.Name {
			position = i
			break
		}
	}
	if err := r.store.RecordStage(ctx, report.RunID, stageFromReport(position, stage)); err != nil {
		r.warn(ctx, err)
	}
}

// RunFinished implements pipeline.Observer.
func (r *Recorder) RunFinished(ctx context.Context, report pipeline.Report) {
	run := runFromReport(report)
	if err := r.store.Finish(ctx, run); err != nil {
		r.warn(ctx, err)
		return
	}
	logging.WithContext(ctx, r.logger).Debug("run recorded",
		logging.String("status", run.Status),
		logging.String("path", r.store.Path()),
	)
}

func (r *Recorder) warn(ctx context.Context, err error) {
	logging.WarnWithContext(logging.WithContext(ctx, r.logger), "history write failed", "history_write_failed",
		logging.Error(err),
		logging.String(logging.FieldImpact, "run ledger is incomplete for this run"),
		logging.String(logging.FieldErrorHint, "check permissions on "+r.store.Path()),
	)
}

func runFromReport(report pipeline.Report) Run {
	run := Run{
		ID:           report.RunID,
		Input:        report.Input,
		OutputDir:    report.Layout.OutputDir,
		Status:       report.Status(),
		ErrorMessage: report.Error,
		ErrorKind:    report.ErrorKind,
		StartedAt:    report.StartedAt,
	}
	if !report.FinishedAt.IsZero() {
		finished := report.FinishedAt
		run.FinishedAt = &finished
	}
	run.Stages = make([]Stage, 0, len(report.Stages))
	for i, stage := range report.Stages {
		run.Stages = append(run.Stages, stageFromReport(i, stage))
	}
	return run
}

func stageFromReport(position int, stage pipeline.StageReport) Stage {
	return Stage{
		Position:     position,
		Name:         stage.Name,
		Status:       string(stage.Status),
		Output:       stage.Output,
		Succeeded:    stage.Succeeded,
		Total:        stage.Total,
		ErrorMessage: stage.Error,
		Duration:     stage.Duration,
	}
}
