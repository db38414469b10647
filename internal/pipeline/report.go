package pipeline

import (
	"time"
)

// StageStatus is the terminal state of one stage in a run.
type StageStatus string

const (
	StatusSucceeded StageStatus = "succeeded"
	StatusSkipped   StageStatus = "skipped"
	StatusFailed    StageStatus = "failed"
	StatusNotRun    StageStatus = "not_run"
)

// StageReport records what one stage did.
type StageReport struct {
	Name      string        `json:"name"`
	Status    StageStatus   `json:"status"`
	Input     string        `json:"input,omitempty"`
	Output    string        `json:"output,omitempty"`
	Succeeded int           `json:"succeeded"`
	Total     int           `json:"total"`
	Error     string        `json:"error,omitempty"`
	ErrorKind string        `json:"error_kind,omitempty"`
	Duration  time.Duration `json:"duration_ns"`
}

// Report is the outcome of a pipeline run.
type Report struct {
	RunID      string        `json:"run_id"`
	Input      string        `json:"input"`
	Layout     Layout        `json:"layout"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Stages     []StageReport `json:"stages"`
	Error      string        `json:"error,omitempty"`
	ErrorKind  string        `json:"error_kind,omitempty"`
	Err        error         `json:"-"`
}

// OK reports whether every non-skipped stage succeeded.
func (r Report) OK() bool {
	if r.Err != nil {
		return false
	}
	for _, stage := range r.Stages {
		if stage.Status == StatusFailed || stage.Status == StatusNotRun {
			return false
		}
	}
	return true
}

// Status summarizes the run for the ledger.
func (r Report) Status() string {
	switch {
	case r.FinishedAt.IsZero():
		return "running"
	case r.OK():
		return "succeeded"
	default:
		return "failed"
	}
}

// Stage returns the report for the named stage.
func (r Report) Stage(name string) (StageReport, bool) {
	for _, stage := range r.Stages {
		if stage.Name == name {
			return stage, true
		}
	}
	return StageReport{}, false
}
