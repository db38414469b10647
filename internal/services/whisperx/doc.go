// Package whisperx runs WhisperX through uvx and converts its JSON output
// into a transcript.Result.
//
// WhisperX produces sentence-level segments with tighter timestamps than the
// stock whisper CLI at the cost of a heavier first run while uvx resolves the
// Python environment. CUDA and VAD settings come from Config.
package whisperx
