package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"chunkscribe/internal/services"
)

// DefaultBinary is used when no binary is configured.
const DefaultBinary = "ffmpeg"

// InstallHints are shown when ffmpeg or ffprobe cannot be found.
var InstallHints = []string{
	"macOS: brew install ffmpeg",
	"Linux: sudo apt-get install ffmpeg",
	"Windows: https://ffmpeg.org/download.html",
}

var commandContext = exec.CommandContext

// ExitError reports a tool that ran but exited unsuccessfully.
type ExitError struct {
	Binary string
	Stderr string
	Err    error
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s: %v", e.Binary, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Binary, e.Err, e.Stderr)
}

func (e *ExitError) Unwrap() []error {
	return []error{services.ErrExternalTool, e.Err}
}

// Run executes binary and returns its stderr output.
func Run(ctx context.Context, binary string, args ...string) (string, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = DefaultBinary
	}
	cmd := commandContext(ctx, binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	diagnostics := strings.TrimSpace(stderr.String())
	if err == nil {
		return diagnostics, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return diagnostics, ctxErr
	}
	if errors.Is(err, exec.ErrNotFound) {
		return "", &services.MissingToolError{Tool: binary, Install: InstallHints, Err: err}
	}
	return diagnostics, &ExitError{Binary: binary, Stderr: diagnostics, Err: err}
}

// AudioCodec maps an output audio format to the ffmpeg encoder that
// produces it.
func AudioCodec(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "mp3":
		return "libmp3lame", nil
	case "wav":
		return "pcm_s16le", nil
	case "aac", "m4a":
		return "aac", nil
	case "flac":
		return "flac", nil
	default:
		return "", fmt.Errorf("%w: unsupported audio format %q", services.ErrValidation, format)
	}
}

// ExtractArgs builds the arguments that drop video (when stripVideo is set)
// and re-encode audio. Existing output is overwritten only when overwrite is
// true; otherwise ffmpeg is told to refuse.
func ExtractArgs(input, output string, stripVideo bool, codec, bitrate string, overwrite bool) []string {
	args := []string{"-hide_banner", "-loglevel", "error", "-i", input}
	if stripVideo {
		args = append(args, "-vn")
	}
	args = append(args, "-acodec", codec)
	if bitrate != "" && !losslessCodec(codec) {
		args = append(args, "-ab", bitrate)
	}
	if overwrite {
		args = append(args, "-y")
	} else {
		args = append(args, "-n")
	}
	return append(args, output)
}

// SliceArgs builds the arguments that cut [startMs, startMs+durationMs) out
// of input and encode it with codec.
func SliceArgs(input, output string, startMs, durationMs int64, codec, bitrate string) []string {
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-ss", millisToSeconds(startMs),
		"-t", millisToSeconds(durationMs),
		"-i", input,
		"-vn",
		"-acodec", codec,
	}
	if bitrate != "" && !losslessCodec(codec) {
		args = append(args, "-ab", bitrate)
	}
	return append(args, "-y", output)
}

func losslessCodec(codec string) bool {
	return codec == "pcm_s16le" || codec == "flac"
}

func millisToSeconds(ms int64) string {
	return strconv.FormatFloat(float64(ms)/1000, 'f', 3, 64)
}
