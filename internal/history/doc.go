// Package history persists pipeline runs to a SQLite ledger.
//
// Each `chunkscribe process` invocation becomes one row in runs plus one row
// per stage, including batch counts, so partial chunking or transcription is
// visible after the fact. The ledger only records; nothing reads it back to
// resume work.
//
// Recorder adapts the store to pipeline.Observer.
package history
