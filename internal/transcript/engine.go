package transcript

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Options are the per-file knobs passed to an engine. An empty Language
// requests automatic detection.
type Options struct {
	Language string
	Model    string
}

// whisperPayload is the JSON document written by the whisper and whisperx
// command-line tools.
type whisperPayload struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// DecodeWhisperJSON parses whisper-style JSON output. When the payload has
// no top-level text, segment texts are joined with spaces.
func DecodeWhisperJSON(data []byte) (Result, error) {
	var payload whisperPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return Result{}, fmt.Errorf("parse whisper json: %w", err)
	}
	result := Result{
		Text:     strings.TrimSpace(payload.Text),
		Language: strings.TrimSpace(payload.Language),
		Segments: make([]Segment, 0, len(payload.Segments)),
	}
	parts := make([]string, 0, len(payload.Segments))
	for _, seg := range payload.Segments {
		start, end := seg.Start, seg.End
		if start < 0 {
			start = 0
		}
		if end < start {
			end = start
		}
		result.Segments = append(result.Segments, Segment{Start: start, End: end, Text: seg.Text})
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	if result.Text == "" {
		result.Text = strings.Join(parts, " ")
	}
	return result, nil
}
