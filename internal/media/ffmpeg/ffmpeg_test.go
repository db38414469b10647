package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"

	"chunkscribe/internal/services"
)

func TestAudioCodec(t *testing.T) {
	tests := map[string]string{"mp3": "libmp3lame", "WAV": "pcm_s16le", "aac": "aac", "flac": "flac"}
	for format, want := range tests {
		got, err := AudioCodec(format)
		if err != nil || got != want {
			t.Fatalf("AudioCodec(%q) = %q, %v; want %q", format, got, err, want)
		}
	}
	if _, err := AudioCodec("ogg"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExtractArgs(t *testing.T) {
	args := ExtractArgs("in.mp4", "out.mp3", true, "libmp3lame", "192k", true)
	want := []string{"-hide_banner", "-loglevel", "error", "-i", "in.mp4", "-vn", "-acodec", "libmp3lame", "-ab", "192k", "-y", "out.mp3"}
	if !slices.Equal(args, want) {
		t.Fatalf("unexpected args:\n got %v\nwant %v", args, want)
	}
	args = ExtractArgs("in.mp4", "out.wav", true, "pcm_s16le", "192k", false)
	if slices.Contains(args, "-ab") {
		t.Fatalf("expected no bitrate for pcm output: %v", args)
	}
	if !slices.Contains(args, "-n") {
		t.Fatalf("expected -n when overwrite is false: %v", args)
	}
}

func TestSliceArgs(t *testing.T) {
	args := SliceArgs("in.mp3", "part_002.mp3", 600000, 125500, "libmp3lame", "")
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-ss 600.000 -t 125.500 -i in.mp3") {
		t.Fatalf("unexpected slice args: %s", joined)
	}
	if args[len(args)-1] != "part_002.mp3" {
		t.Fatalf("expected output last, got %v", args)
	}
}

func TestRunMissingBinary(t *testing.T) {
	_, err := Run(context.Background(), "clearly-not-present-ffmpeg", "-version")
	if !errors.Is(err, services.ErrToolMissing) {
		t.Fatalf("expected ErrToolMissing, got %v", err)
	}
	if hint := services.Hint(err); !strings.Contains(hint, "brew install ffmpeg") {
		t.Fatalf("expected install hint, got %q", hint)
	}
}

func TestRunSurfacesStderrOnFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stub requires a POSIX shell")
	}
	stub := filepath.Join(t.TempDir(), "ffmpeg")
	script := "#!/bin/sh\necho 'Invalid data found when processing input' >&2\nexit 1\n"
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	diagnostics, err := Run(context.Background(), stub, "-i", "broken.mp4")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Stderr != "Invalid data found when processing input" {
		t.Fatalf("expected stderr verbatim, got %#v", err)
	}
	if diagnostics != exitErr.Stderr {
		t.Fatalf("expected diagnostics to match stderr, got %q", diagnostics)
	}
}
