// Package transcript holds the engine-neutral transcription result and the
// renderers that turn it into txt, json, srt, or vtt output.
//
// Renderers are pure: they read only the result they are given, so identical
// input always produces byte-identical output.
package transcript
