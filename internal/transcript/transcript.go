package transcript

import (
	"fmt"
	"strings"
)

// Segment is a time-aligned span of recognized text. Times are seconds
// relative to the start of the transcribed file.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Result is what an engine returns for one audio file.
type Result struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
	Language string    `json:"language"`
}

// Format names an output rendering.
type Format string

// Supported output formats.
const (
	FormatText Format = "txt"
	FormatJSON Format = "json"
	FormatSRT  Format = "srt"
	FormatVTT  Format = "vtt"
)

// Formats lists every supported format in display order.
var Formats = []Format{FormatText, FormatJSON, FormatSRT, FormatVTT}

// ParseFormat validates a user-supplied format name.
func ParseFormat(value string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(value))); f {
	case FormatText, FormatJSON, FormatSRT, FormatVTT:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported transcript format %q (expected txt, json, srt, or vtt)", value)
	}
}

// Extension returns the file extension, without the dot, used for f.
func (f Format) Extension() string {
	return string(f)
}

// Preview returns at most limit runes of the text, with "..." appended when
// it was shortened.
func Preview(text string, limit int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
