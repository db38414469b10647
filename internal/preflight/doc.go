// Package preflight provides readiness checks for the binaries, directories,
// and remote endpoints chunkscribe depends on.
//
// These checks run in two contexts:
//   - `chunkscribe check` renders every result as a table.
//   - `chunkscribe process` calls RunAll before the first stage so a missing
//     state directory or rejected API key is reported before any work starts.
//
// Remote checks only run for the engine that is configured.
package preflight
