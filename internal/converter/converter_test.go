package converter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"chunkscribe/internal/confirm"
	"chunkscribe/internal/logging"
	"chunkscribe/internal/services"
)

type fakeTool struct {
	calls []Request
	err   error
}

func (f *fakeTool) Convert(_ context.Context, req Request) (Result, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return Result{Diagnostics: "boom"}, f.err
	}
	return Result{}, os.WriteFile(req.Output, []byte("audio"), 0o644)
}

func writeVideo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lecture.mp4")
	if err := os.WriteFile(path, []byte("video"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func TestRunConvertsToRequestedPath(t *testing.T) {
	input := writeVideo(t)
	output := filepath.Join(t.TempDir(), "nested", "lecture.mp3")
	tool := &fakeTool{}
	c := New(tool, confirm.Static(false), logging.NewNop())

	got, err := c.Run(context.Background(), Options{Input: input, Output: output, Format: "mp3", Bitrate: "192k"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != output {
		t.Fatalf("unexpected output %q", got)
	}
	if len(tool.calls) != 1 {
		t.Fatalf("expected one tool call, got %d", len(tool.calls))
	}
	req := tool.calls[0]
	if !req.StripVideo || req.Codec != "libmp3lame" || req.Bitrate != "192k" || req.Overwrite {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestRunDefaultsOutputToWorkingDirectory(t *testing.T) {
	input := writeVideo(t)
	work := t.TempDir()
	t.Chdir(work)
	c := New(&fakeTool{}, nil, logging.NewNop())

	got, err := c.Run(context.Background(), Options{Input: input, Format: "wav"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != "lecture.wav" {
		t.Fatalf("unexpected default output %q", got)
	}
	if _, err := os.Stat(filepath.Join(work, "lecture.wav")); err != nil {
		t.Fatalf("expected output in working dir: %v", err)
	}
}

func TestRunDeclinedOverwriteCancels(t *testing.T) {
	input := writeVideo(t)
	output := filepath.Join(t.TempDir(), "lecture.mp3")
	if err := os.WriteFile(output, []byte("keep me"), 0o644); err != nil {
		t.Fatalf("seed output: %v", err)
	}
	tool := &fakeTool{}
	c := New(tool, confirm.Static(false), logging.NewNop())

	_, err := c.Run(context.Background(), Options{Input: input, Output: output, Format: "mp3"})
	if !errors.Is(err, services.ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if len(tool.calls) != 0 {
		t.Fatal("tool must not run after a declined overwrite")
	}
	data, _ := os.ReadFile(output)
	if string(data) != "keep me" {
		t.Fatalf("existing output modified: %q", data)
	}
}

func TestRunAcceptedOverwrite(t *testing.T) {
	input := writeVideo(t)
	output := filepath.Join(t.TempDir(), "lecture.mp3")
	if err := os.WriteFile(output, []byte("old"), 0o644); err != nil {
		t.Fatalf("seed output: %v", err)
	}
	tool := &fakeTool{}
	c := New(tool, confirm.Static(true), logging.NewNop())
	if _, err := c.Run(context.Background(), Options{Input: input, Output: output, Format: "mp3"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !tool.calls[0].Overwrite {
		t.Fatal("expected overwrite flag after confirmation")
	}
}

func TestRunErrors(t *testing.T) {
	input := writeVideo(t)
	missingTool := &fakeTool{err: &services.MissingToolError{Tool: "ffmpeg", Install: []string{"brew install ffmpeg"}}}
	failingTool := &fakeTool{err: errors.New("exit status 1: Invalid data found")}

	tests := []struct {
		name string
		tool Tool
		opts Options
		kind string
	}{
		{"missing input", &fakeTool{}, Options{Input: filepath.Join(t.TempDir(), "nope.mp4"), Format: "mp3"}, "input_missing"},
		{"bad format", &fakeTool{}, Options{Input: input, Format: "ogg"}, "invalid_input"},
		{"same path", &fakeTool{}, Options{Input: input, Output: input, Format: "mp3"}, "invalid_input"},
		{"tool missing", missingTool, Options{Input: input, Output: filepath.Join(t.TempDir(), "a.mp3"), Format: "mp3"}, "environment_missing"},
		{"tool failed", failingTool, Options{Input: input, Output: filepath.Join(t.TempDir(), "b.mp3"), Format: "mp3"}, "stage_failure"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.tool, confirm.Static(true), logging.NewNop())
			_, err := c.Run(context.Background(), tt.opts)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := services.Kind(err); got != tt.kind {
				t.Fatalf("Kind = %q, want %q (err=%v)", got, tt.kind, err)
			}
		})
	}
	_, err := New(failingTool, nil, logging.NewNop()).Run(context.Background(), Options{Input: input, Output: filepath.Join(t.TempDir(), "c.mp3"), Format: "mp3"})
	if !strings.Contains(err.Error(), "Invalid data found") {
		t.Fatalf("expected tool diagnostics in error, got %v", err)
	}
}

func TestFFmpegToolPassesArguments(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stub requires a POSIX shell")
	}
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args.txt")
	stub := filepath.Join(dir, "ffmpeg")
	script := "#!/bin/sh\nprintf '%s\\n' \"$@\" > " + argsFile + "\n"
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	_, err := FFmpegTool{Binary: stub}.Convert(context.Background(), Request{
		Input: "in.mp4", Output: "out.mp3", StripVideo: true, Codec: "libmp3lame", Bitrate: "128k", Overwrite: true,
	})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	data, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("read args: %v", err)
	}
	args := strings.Fields(string(data))
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-i in.mp4 -vn -acodec libmp3lame -ab 128k -y out.mp3") {
		t.Fatalf("unexpected ffmpeg args: %s", joined)
	}
}
