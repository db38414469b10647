package ffprobe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"chunkscribe/internal/services"
)

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "video"},
			{CodecType: "audio"},
			{CodecType: "AUDIO"},
		},
		Format: Format{Duration: "123.45"},
	}
	if result.AudioStreamCount() != 2 {
		t.Fatalf("expected 2 audio streams, got %d", result.AudioStreamCount())
	}
	if result.DurationMillis() != 123450 {
		t.Fatalf("unexpected duration millis: %d", result.DurationMillis())
	}
}

func TestDurationMillisRejectsUnusableValues(t *testing.T) {
	for _, raw := range []string{"", "bad", "N/A", "-1", "NaN", "+Inf"} {
		result := Result{Format: Format{Duration: raw}}
		if got := result.DurationMillis(); got != 0 {
			t.Fatalf("duration %q: expected 0, got %d", raw, got)
		}
	}
}

func TestDurationMillisFallsBackToAudioStream(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "audio", Duration: "61.5"},
			{CodecType: "video", Duration: "99"},
		},
	}
	if got := result.DurationMillis(); got != 61500 {
		t.Fatalf("expected 61500, got %d", got)
	}
}

func TestProberWithStub(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stub requires a POSIX shell")
	}
	stub := filepath.Join(t.TempDir(), "ffprobe")
	script := `#!/bin/sh
cat <<'JSON'
{"streams":[{"index":0,"codec_type":"audio","duration":"1500.000"}],"format":{"duration":"1500.000"}}
JSON
`
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	ms, streams, err := Prober{Binary: stub}.Probe(context.Background(), "lecture.mp3")
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if ms != 1_500_000 || streams != 1 {
		t.Fatalf("unexpected probe result: %d ms, %d streams", ms, streams)
	}
}

func TestInspectMissingBinary(t *testing.T) {
	_, err := Inspect(context.Background(), "clearly-not-present-ffprobe", "in.mp3")
	if !errors.Is(err, services.ErrToolMissing) {
		t.Fatalf("expected ErrToolMissing, got %v", err)
	}
}
