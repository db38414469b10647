// Package batch accounts for item-level success and failure across a set of
// chunk writes or file transcriptions.
package batch

import (
	"fmt"
	"strings"

	"chunkscribe/internal/services"
)

// Outcome summarizes a batch.
type Outcome string

const (
	Success Outcome = "success"
	Partial Outcome = "partial"
	Failed  Outcome = "failed"
)

// ItemFailure records why one item in a batch could not be produced.
type ItemFailure struct {
	Item string `json:"item"`
	Err  error  `json:"-"`
	// Message mirrors Err for structured output.
	Message string `json:"error"`
}

// Report counts attempted and successful items.
type Report struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failures  []ItemFailure `json:"failures,omitempty"`
}

// RecordSuccess counts one successful item.
func (r *Report) RecordSuccess() {
	r.Total++
	r.Succeeded++
}

// RecordFailure counts one failed item.
func (r *Report) RecordFailure(item string, err error) {
	r.Total++
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	r.Failures = append(r.Failures, ItemFailure{Item: item, Err: err, Message: msg})
}

// Failed returns the number of failed items.
func (r Report) Failed() int {
	return r.Total - r.Succeeded
}

// Outcome classifies the batch. An empty batch counts as failed.
func (r Report) Outcome() Outcome {
	switch {
	case r.Total > 0 && r.Succeeded == r.Total:
		return Success
	case r.Succeeded > 0:
		return Partial
	default:
		return Failed
	}
}

// Summary renders "succeeded/total".
func (r Report) Summary() string {
	return fmt.Sprintf("%d/%d", r.Succeeded, r.Total)
}

// Err returns nil only when every item succeeded. Otherwise the error names
// the first few failed items and wraps services.ErrPartial when some items
// succeeded, services.ErrAllFailed when none did.
func (r Report) Err(stage string) error {
	if r.Outcome() == Success {
		return nil
	}
	msg := fmt.Sprintf("%s items succeeded", r.Summary())
	if r.Total == 0 {
		msg = "no items processed"
	}
	if names := r.failedItems(3); names != "" {
		msg += " (failed: " + names + ")"
	}
	marker := services.ErrPartial
	if r.Outcome() == Failed {
		marker = services.ErrAllFailed
	}
	return services.Wrap(marker, stage, "batch", msg, nil)
}

func (r Report) failedItems(limit int) string {
	if len(r.Failures) == 0 {
		return ""
	}
	names := make([]string, 0, limit)
	for i, f := range r.Failures {
		if i == limit {
			names = append(names, fmt.Sprintf("+%d more", len(r.Failures)-limit))
			break
		}
		names = append(names, f.Item)
	}
	return strings.Join(names, ", ")
}
