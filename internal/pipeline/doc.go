// Package pipeline sequences the convert, chunk, and transcribe stages for a
// single input file.
//
// The orchestrator owns path derivation and fail-fast sequencing only: each
// stage receives the previous stage's output (or the most recent artifact
// when a stage is skipped), and the first failure ends the run with later
// stages recorded as not run. Already written outputs are left in place.
// An Observer receives stage transitions so callers can persist progress.
package pipeline
