package whisperx

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"chunkscribe/internal/transcript"
)

func argValue(args []string, flag string) string {
	i := slices.Index(args, flag)
	if i < 0 || i+1 >= len(args) {
		return ""
	}
	return args[i+1]
}

func TestBuildArgsCPU(t *testing.T) {
	svc := NewService(Config{})
	args := svc.buildArgs("/audio/part_001.mp3", "/tmp/out", transcript.Options{Model: "small", Language: "english"})

	if args[0] != "--index-url" || args[1] != pypiIndexURL {
		t.Fatalf("unexpected index args: %v", args[:2])
	}
	if argValue(args, "whisperx") != "/audio/part_001.mp3" {
		t.Fatalf("expected source after whisperx, got %v", args)
	}
	if argValue(args, "--model") != "small" {
		t.Fatalf("expected request model, got %q", argValue(args, "--model"))
	}
	if argValue(args, "--language") != "en" {
		t.Fatalf("expected normalized language, got %q", argValue(args, "--language"))
	}
	if argValue(args, "--device") != "cpu" || argValue(args, "--compute_type") != "float32" {
		t.Fatalf("expected cpu device args: %v", args)
	}
	if argValue(args, "--output_format") != "json" || argValue(args, "--vad_method") != "silero" {
		t.Fatalf("expected fixed decoding args: %v", args)
	}
}

func TestBuildArgsCUDAAndAutoLanguage(t *testing.T) {
	svc := NewService(Config{CUDAEnabled: true})
	args := svc.buildArgs("a.wav", "/tmp/out", transcript.Options{Model: "large"})

	if argValue(args, "--extra-index-url") != pypiIndexURL || argValue(args, "--index-url") != cudaIndexURL {
		t.Fatalf("unexpected index urls: %v", args)
	}
	if argValue(args, "--model") != "large-v3" {
		t.Fatalf("expected large to map to large-v3, got %q", argValue(args, "--model"))
	}
	if slices.Contains(args, "--language") {
		t.Fatalf("expected no language flag: %v", args)
	}
	if argValue(args, "--device") != "cuda" || slices.Contains(args, "--compute_type") {
		t.Fatalf("unexpected cuda args: %v", args)
	}
}

func TestModelOverrideWins(t *testing.T) {
	svc := NewService(Config{Model: "distil-large-v3"})
	args := svc.buildArgs("a.wav", "/tmp/out", transcript.Options{Model: "tiny"})
	if argValue(args, "--model") != "distil-large-v3" {
		t.Fatalf("expected override model, got %q", argValue(args, "--model"))
	}
}

func TestTranscribeLoadsSegments(t *testing.T) {
	svc := NewService(Config{UVXBinary: "uvx-test"})
	svc.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		if name != "uvx-test" {
			t.Fatalf("unexpected launcher %q", name)
		}
		payload := `{"segments":[{"start":0.5,"end":1.25,"text":" first"},{"start":1.25,"end":3,"text":"second "}],"language":"en"}`
		return os.WriteFile(filepath.Join(argValue(args, "--output_dir"), "part_002.json"), []byte(payload), 0o644)
	})

	result, err := svc.Transcribe(context.Background(), "/audio/part_002.mp3", transcript.Options{Model: "base"})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if result.Text != "first second" || result.Language != "en" || len(result.Segments) != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestTranscribePropagatesRunnerError(t *testing.T) {
	svc := NewService(Config{})
	boom := errors.New("boom")
	svc.WithCommandRunner(func(context.Context, string, ...string) error { return boom })
	if _, err := svc.Transcribe(context.Background(), "a.mp3", transcript.Options{}); !errors.Is(err, boom) {
		t.Fatalf("expected runner error, got %v", err)
	}
}
