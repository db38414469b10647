// Package logs reads the chunkscribe log file for the `logs` command.
//
// Tail returns the last N lines (negative offset) or everything after a byte
// offset, optionally waiting for new lines. Follow builds on it to stream a
// growing file until the context ends. Memory stays bounded by the requested
// line count.
package logs
