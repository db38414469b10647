package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"chunkscribe/internal/media/ffmpeg"
	"chunkscribe/internal/services"
)

// DefaultBinary is used when no binary is configured.
const DefaultBinary = "ffprobe"

var commandContext = exec.CommandContext

// Only the fields duration planning needs.
const showEntries = "format=duration,format_name:stream=index,codec_type,codec_name,duration"

// Result is the subset of ffprobe's JSON output chunkscribe reads.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes one stream in the container.
type Stream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Duration  string `json:"duration"`
}

// Format carries container-level duration.
type Format struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
}

// Inspect runs ffprobe against path and decodes its JSON output.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = DefaultBinary
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := commandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_entries", showEntries, "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return Result{}, &services.MissingToolError{Tool: binary, Install: ffmpeg.InstallHints, Err: err}
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{}, &ffmpeg.ExitError{Binary: binary, Stderr: strings.TrimSpace(string(exitErr.Stderr)), Err: err}
		}
		return Result{}, fmt.Errorf("ffprobe inspect: %w", err)
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// AudioStreamCount returns the number of audio streams.
func (r Result) AudioStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			count++
		}
	}
	return count
}

// DurationMillis returns the container duration rounded to whole
// milliseconds. Falls back to the longest audio stream when the container
// reports nothing usable, and to 0 when neither does.
func (r Result) DurationMillis() int64 {
	seconds, ok := parseSeconds(r.Format.Duration)
	if !ok {
		seconds = 0
		for _, stream := range r.Streams {
			if !strings.EqualFold(stream.CodecType, "audio") {
				continue
			}
			if s, ok := parseSeconds(stream.Duration); ok && s > seconds {
				seconds = s
			}
		}
	}
	return int64(math.Round(seconds * 1000))
}

// parseSeconds accepts positive finite values only; ffprobe prints "N/A"
// for streams without a known length.
func parseSeconds(value string) (float64, bool) {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}

// Prober reports audio durations through ffprobe.
type Prober struct {
	Binary string
}

// Probe returns the audio duration of path in milliseconds and the number of
// audio streams found.
func (p Prober) Probe(ctx context.Context, path string) (int64, int, error) {
	result, err := Inspect(ctx, p.Binary, path)
	if err != nil {
		return 0, 0, err
	}
	return result.DurationMillis(), result.AudioStreamCount(), nil
}
