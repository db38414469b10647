package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrToolMissing   = errors.New("external tool not installed")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrPartial       = errors.New("partial failure")
	ErrAllFailed     = errors.New("every item failed")
	ErrCancelled     = errors.New("cancelled by user")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind names the error category used in run reports and the history ledger.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "input_missing"
	case errors.Is(err, ErrToolMissing):
		return "environment_missing"
	case errors.Is(err, ErrPartial):
		return "partial_failure"
	case errors.Is(err, ErrAllFailed):
		return "total_failure"
	case errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConfiguration):
		return "invalid_input"
	default:
		return "stage_failure"
	}
}

// Hint returns a remediation message for errors the user can fix locally.
func Hint(err error) string {
	var missing *MissingToolError
	if errors.As(err, &missing) {
		return missing.Hint()
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return "verify the input path exists"
	case errors.Is(err, ErrConfiguration):
		return "run `chunkscribe config validate` to inspect the configuration"
	default:
		return ""
	}
}

// MissingToolError reports an external binary that could not be located.
type MissingToolError struct {
	Tool    string
	Install []string
	Err     error
}

func (e *MissingToolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s not found: %v", e.Tool, e.Err)
	}
	return e.Tool + " not found"
}

func (e *MissingToolError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrToolMissing, e.Err}
	}
	return []error{ErrToolMissing}
}

// Hint joins the install instructions into a single line.
func (e *MissingToolError) Hint() string {
	if len(e.Install) == 0 {
		return fmt.Sprintf("install %s and make sure it is on PATH", e.Tool)
	}
	return fmt.Sprintf("install %s (%s)", e.Tool, strings.Join(e.Install, "; "))
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
