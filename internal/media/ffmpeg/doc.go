// Package ffmpeg runs the ffmpeg binary and builds the argument lists for the
// two jobs chunkscribe gives it: stripping video into an audio file and
// slicing an audio file into fixed-duration parts.
//
// A missing binary is reported as services.MissingToolError with install
// hints; a nonzero exit is reported as *ExitError carrying stderr verbatim.
package ffmpeg
