// Package notifications delivers run outcomes via ntfy.
//
// NewService returns a no-op implementation when no topic is configured, so
// callers can wire an Observer unconditionally. The Observer plugs into the
// pipeline and reports completed runs (optionally) and halted runs (always,
// unless the user cancelled).
package notifications
