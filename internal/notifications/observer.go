package notifications

import (
	"context"
	"fmt"
	"log/slog"

	"chunkscribe/internal/logging"
	"chunkscribe/internal/pipeline"
)

// Observer sends a notification when a pipeline run finishes. Delivery
// failures are logged and never change the run outcome.
type Observer struct {
	service   Service
	onSuccess bool
	logger    *slog.Logger
}

// NewObserver wraps svc as a pipeline observer.
func NewObserver(svc Service, onSuccess bool, logger *slog.Logger) *Observer {
	return &Observer{
		service:   svc,
		onSuccess: onSuccess,
		logger:    logging.NewComponentLogger(logger, "notifications"),
	}
}

var _ pipeline.Observer = (*Observer)(nil)

// RunStarted implements pipeline.Observer.
func (o *Observer) RunStarted(context.Context, pipeline.Report) {}

// StageFinished implements pipeline.Observer.
func (o *Observer) StageFinished(context.Context, pipeline.Report, pipeline.StageReport) {}

// RunFinished implements pipeline.Observer.
func (o *Observer) RunFinished(ctx context.Context, report pipeline.Report) {
	// The run context may already be cancelled; the http client timeout bounds delivery.
	sendCtx := context.WithoutCancel(ctx)

	var err error
	switch {
	case report.OK():
		if !o.onSuccess {
			return
		}
		err = o.service.NotifyRunCompleted(sendCtx, report.Input, summarize(report), report.FinishedAt.Sub(report.StartedAt))
	case report.ErrorKind == "cancelled":
		return
	default:
		err = o.service.NotifyRunFailed(sendCtx, report.Input, failedStage(report), report.Err)
	}
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, o.logger), "notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run outcome was not delivered to ntfy"),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic and network access"),
		)
	}
}

func summarize(report pipeline.Report) string {
	stage, ok := report.Stage(pipeline.StageTranscribe)
	if !ok || stage.Status != pipeline.StatusSucceeded {
		return ""
	}
	return fmt.Sprintf("%d/%d chunks transcribed into %s", stage.Succeeded, stage.Total, stage.Output)
}

func failedStage(report pipeline.Report) string {
	for _, stage := range report.Stages {
		if stage.Status == pipeline.StatusFailed {
			return stage.Name
		}
	}
	return ""
}
