package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"chunkscribe/internal/fileutil"
	"chunkscribe/internal/logging"
	"chunkscribe/internal/services"
)

// Step pairs a stage with its skip flag.
type Step struct {
	Stage Stage
	Skip  bool
}

// Observer is notified as a run progresses. Implementations must not block
// for long; they run on the pipeline goroutine.
type Observer interface {
	RunStarted(ctx context.Context, report Report)
	StageFinished(ctx context.Context, report Report, stage StageReport)
	RunFinished(ctx context.Context, report Report)
}

// Pipeline runs steps in order and stops at the first failure.
type Pipeline struct {
	steps     []Step
	observers []Observer
	logger    *slog.Logger
	newRunID  func() string
	now       func() time.Time
	lockDir   bool
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithObserver registers an Observer. Observers are notified in
// registration order; nil is ignored.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) {
		if o != nil {
			p.observers = append(p.observers, o)
		}
	}
}

// WithRunID overrides run id generation (for testing).
func WithRunID(fn func() string) Option {
	return func(p *Pipeline) { p.newRunID = fn }
}

// WithoutLock disables the output directory lock.
func WithoutLock() Option {
	return func(p *Pipeline) { p.lockDir = false }
}

// New constructs a Pipeline.
func New(logger *slog.Logger, steps []Step, opts ...Option) *Pipeline {
	p := &Pipeline{
		steps:    steps,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
		newRunID: uuid.NewString,
		now:      time.Now,
		lockDir:  true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the pipeline for input. The returned report is always
// populated; report.Err holds the first failure.
func (p *Pipeline) Run(ctx context.Context, input string, layout Layout) Report {
	report := Report{
		RunID:     p.newRunID(),
		Input:     input,
		Layout:    layout,
		StartedAt: p.now(),
		Stages:    make([]StageReport, 0, len(p.steps)),
	}
	for _, step := range p.steps {
		report.Stages = append(report.Stages, StageReport{Name: step.Stage.Name(), Status: StatusNotRun})
	}
	ctx = services.WithRunID(ctx, report.RunID)
	logger := logging.WithContext(ctx, p.logger)

	if err := checkInput(input); err != nil {
		return p.finish(ctx, logger, report, err)
	}

	if p.lockDir {
		lock, err := fileutil.LockDir(layout.OutputDir)
		if err != nil {
			marker := services.ErrConfiguration
			if errors.Is(err, fileutil.ErrLocked) {
				marker = services.ErrValidation
			}
			return p.finish(ctx, logger, report, services.Wrap(marker, "", "lock output dir", layout.OutputDir, err))
		}
		defer func() {
			if err := lock.Unlock(); err != nil {
				logger.Warn("failed to release output lock",
					logging.Error(err),
					logging.String(logging.FieldEventType, "lock_release_failed"),
					logging.String(logging.FieldErrorHint, "remove "+lock.Path()+" manually if later runs report a lock"),
					logging.String(logging.FieldImpact, "stale lock file left behind"),
				)
			}
		}()
	}

	logger.Info("pipeline started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("input", input),
		logging.String("output", layout.OutputDir),
	)
	for _, o := range p.observers {
		o.RunStarted(ctx, report)
	}

	current := input
	for i, step := range p.steps {
		name := step.Stage.Name()
		stageCtx := services.WithStage(ctx, name)
		stageLogger := logging.WithContext(stageCtx, p.logger)
		sr := &report.Stages[i]
		sr.Input = current

		if step.Skip {
			sr.Status = StatusSkipped
			sr.Output = current
			stageLogger.Info("stage skipped", logging.String(logging.FieldEventType, "stage_skip"), logging.String("input", current))
			p.notifyStage(ctx, report, *sr)
			continue
		}

		stageLogger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"), logging.String("input", current))
		started := p.now()
		result, err := step.Stage.Run(stageCtx, current)
		sr.Duration = p.now().Sub(started)
		sr.Output = result.Output
		sr.Succeeded = result.Succeeded
		sr.Total = result.Total
		if err != nil {
			sr.Status = StatusFailed
			sr.Error = err.Error()
			sr.ErrorKind = services.Kind(err)
			attrs := []logging.Attr{
				logging.String(logging.FieldEventType, "stage_failure"),
				logging.Error(err),
				logging.String("error_kind", sr.ErrorKind),
			}
			if result.Total > 0 {
				attrs = append(attrs, logging.Int("succeeded", result.Succeeded), logging.Int("total", result.Total))
			}
			if hint := services.Hint(err); hint != "" {
				attrs = append(attrs, logging.String(logging.FieldErrorHint, hint))
			}
			if errors.Is(err, services.ErrCancelled) {
				stageLogger.Info("stage cancelled", logging.Args(attrs...)...)
			} else {
				logging.ErrorWithContext(stageLogger, "stage failed", "stage_failure", attrs...)
			}
			p.notifyStage(ctx, report, *sr)
			return p.finish(ctx, logger, report, err)
		}

		sr.Status = StatusSucceeded
		stageLogger.Info("stage completed",
			logging.String(logging.FieldEventType, "stage_complete"),
			logging.String("output", result.Output),
			logging.Int("succeeded", result.Succeeded),
			logging.Int("total", result.Total),
			logging.Duration("duration", sr.Duration),
		)
		p.notifyStage(ctx, report, *sr)
		if result.Output != "" {
			current = result.Output
		}
	}

	return p.finish(ctx, logger, report, nil)
}

func (p *Pipeline) notifyStage(ctx context.Context, report Report, stage StageReport) {
	for _, o := range p.observers {
		o.StageFinished(ctx, report, stage)
	}
}

func (p *Pipeline) finish(ctx context.Context, logger *slog.Logger, report Report, err error) Report {
	report.FinishedAt = p.now()
	report.Err = err
	if err != nil {
		report.Error = err.Error()
		report.ErrorKind = services.Kind(err)
	}
	if report.OK() {
		logger.Info("pipeline completed",
			logging.String(logging.FieldEventType, "run_complete"),
			logging.String("output", report.Layout.OutputDir),
			logging.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
		)
	} else {
		logger.Info("pipeline halted",
			logging.String(logging.FieldEventType, "run_halted"),
			logging.String("error_kind", report.ErrorKind),
			logging.String("not_run", strings.Join(notRun(report), ", ")),
		)
	}
	for _, o := range p.observers {
		o.RunFinished(ctx, report)
	}
	return report
}

func notRun(report Report) []string {
	var names []string
	for _, stage := range report.Stages {
		if stage.Status == StatusNotRun {
			names = append(names, stage.Name)
		}
	}
	return names
}

func checkInput(input string) error {
	info, err := os.Stat(input)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return services.Wrap(services.ErrNotFound, "", "validate input", input, err)
		}
		return services.Wrap(services.ErrValidation, "", "validate input", input, err)
	}
	if info.IsDir() {
		return services.Wrap(services.ErrValidation, "", "validate input", input+" is a directory", nil)
	}
	return nil
}
