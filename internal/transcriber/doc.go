// Package transcriber resolves audio inputs, hands each file to a
// transcription Engine, and writes one rendered transcript per file.
//
// Files are processed sequentially in lexicographic path order. A failing
// file is logged and counted; the rest of the batch still runs.
package transcriber
