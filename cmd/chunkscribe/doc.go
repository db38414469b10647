// Package main hosts the chunkscribe CLI entrypoint and command graph.
//
// The Cobra command tree exposes each pipeline stage on its own (convert,
// chunk, transcribe), the combined process command, dependency checks, the
// run history ledger, and configuration scaffolding. It centralizes
// configuration resolution, flag overrides, and logger construction so
// subcommands only translate flags into stage requests.
//
// Keep this package lean: new behaviour belongs in the internal packages
// first and is surfaced here through flags.
package main
