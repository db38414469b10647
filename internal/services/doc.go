// Package services defines shared utilities consumed by the pipeline stages and
// the external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and batch items for
//     logging and the run ledger.
//   - Structured error markers plus the Wrap helper so the CLI can tell an
//     absent input from a missing tool, a partial batch, or a tool failure.
//   - MissingToolError, which carries install hints for the user.
//
// Subpackages wrap the transcription engines (local whisper, WhisperX, and
// the OpenAI API) behind the transcriber.Engine capability.
package services
