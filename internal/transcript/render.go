package transcript

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// RenderSRT emits numbered SRT blocks, one per segment.
func RenderSRT(segments []Segment) string {
	var b strings.Builder
	for i, seg := range segments {
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteByte('\n')
		writeCueTiming(&b, seg, SRTSeparator)
		b.WriteString(strings.TrimSpace(seg.Text))
		b.WriteString("\n\n")
	}
	return b.String()
}

// RenderVTT emits a WEBVTT document. Cues carry no sequence numbers.
func RenderVTT(segments []Segment) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for _, seg := range segments {
		writeCueTiming(&b, seg, VTTSeparator)
		b.WriteString(strings.TrimSpace(seg.Text))
		b.WriteString("\n\n")
	}
	return b.String()
}

func writeCueTiming(b *strings.Builder, seg Segment, sep string) {
	b.WriteString(FormatTimestamp(seg.Start, sep))
	b.WriteString(" --> ")
	b.WriteString(FormatTimestamp(seg.End, sep))
	b.WriteByte('\n')
}

// RenderText returns the full transcript text as produced by the engine.
func RenderText(result Result) string {
	return result.Text
}

// RenderJSON pretty-prints the whole result. Non-ASCII text is written as-is.
func RenderJSON(result Result) ([]byte, error) {
	if result.Segments == nil {
		result.Segments = []Segment{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return nil, fmt.Errorf("encode transcript json: %w", err)
	}
	return buf.Bytes(), nil
}

// Render dispatches to the renderer for format.
func Render(format Format, result Result) ([]byte, error) {
	switch format {
	case FormatText:
		return []byte(RenderText(result)), nil
	case FormatJSON:
		return RenderJSON(result)
	case FormatSRT:
		return []byte(RenderSRT(result.Segments)), nil
	case FormatVTT:
		return []byte(RenderVTT(result.Segments)), nil
	default:
		return nil, fmt.Errorf("render transcript: unsupported format %q", format)
	}
}
