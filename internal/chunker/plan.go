package chunker

import (
	"errors"
	"fmt"
	"strings"

	"chunkscribe/internal/services"
)

// ErrNoAudio reports a source with zero duration or no audio streams.
var ErrNoAudio = errors.New("no audio to process")

// Span is one planned part of the source, in milliseconds. Index is 1-based.
type Span struct {
	Index   int   `json:"index"`
	StartMs int64 `json:"start_ms"`
	EndMs   int64 `json:"end_ms"`
}

// DurationMs returns EndMs - StartMs.
func (s Span) DurationMs() int64 {
	return s.EndMs - s.StartMs
}

// Plan partitions [0, totalMs) into ceil(totalMs/chunkMs) contiguous spans.
// The last span ends exactly at totalMs.
func Plan(totalMs, chunkMs int64) ([]Span, error) {
	if chunkMs <= 0 {
		return nil, fmt.Errorf("%w: chunk duration must be positive, got %dms", services.ErrValidation, chunkMs)
	}
	if totalMs < 0 {
		return nil, fmt.Errorf("%w: negative source duration %dms", services.ErrValidation, totalMs)
	}
	if totalMs == 0 {
		return nil, ErrNoAudio
	}
	count := (totalMs + chunkMs - 1) / chunkMs
	spans := make([]Span, 0, count)
	for i := int64(0); i < count; i++ {
		spans = append(spans, Span{
			Index:   int(i) + 1,
			StartMs: i * chunkMs,
			EndMs:   min((i+1)*chunkMs, totalMs),
		})
	}
	return spans, nil
}

// MinutesToMillis converts a chunk duration in minutes to milliseconds.
func MinutesToMillis(minutes int) int64 {
	return int64(minutes) * 60_000
}

// ChunkFileName returns part_NNN.<ext> for a 1-based index.
func ChunkFileName(index int, ext string) string {
	return fmt.Sprintf("part_%03d.%s", index, strings.TrimPrefix(strings.ToLower(ext), "."))
}
