package chunker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"chunkscribe/internal/batch"
	"chunkscribe/internal/logging"
	"chunkscribe/internal/services"
)

type fakeProber struct {
	durationMs int64
	streams    int
	err        error
}

func (p fakeProber) Probe(context.Context, string) (int64, int, error) {
	return p.durationMs, p.streams, p.err
}

// fakeSlicer writes a placeholder file per request unless the output name is
// listed in fail.
type fakeSlicer struct {
	mu       sync.Mutex
	fail     map[string]bool
	requests []SliceRequest
}

func (s *fakeSlicer) Slice(_ context.Context, req SliceRequest) error {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	if s.fail[filepath.Base(req.Output)] {
		return errors.New("disk full")
	}
	return os.WriteFile(req.Output, []byte("audio"), 0o644)
}

func writeInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lecture.mp3")
	if err := os.WriteFile(path, []byte("source"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func TestRunWritesAllChunks(t *testing.T) {
	input := writeInput(t)
	slicer := &fakeSlicer{}
	c := New(fakeProber{durationMs: 1_500_000, streams: 1}, slicer, logging.NewNop())

	report, err := c.Run(context.Background(), Request{Input: input, ChunkMinutes: 10, Format: "mp3"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	wantDir := filepath.Join(filepath.Dir(input), "lecture_chunks")
	if report.OutputDir != wantDir {
		t.Fatalf("unexpected output dir %q", report.OutputDir)
	}
	if report.Outcome() != batch.Success || report.Succeeded != 3 || report.Total != 3 {
		t.Fatalf("unexpected report: %+v", report.Report)
	}
	for i, name := range []string{"part_001.mp3", "part_002.mp3", "part_003.mp3"} {
		if _, err := os.Stat(filepath.Join(wantDir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
		if report.Chunks[i].Index != i+1 {
			t.Fatalf("unexpected chunk index %d", report.Chunks[i].Index)
		}
	}
	last := slicer.requests[2]
	if last.StartMs != 1_200_000 || last.EndMs != 1_500_000 {
		t.Fatalf("unexpected final slice: %+v", last)
	}
}

func TestRunPartialFailureContinues(t *testing.T) {
	input := writeInput(t)
	outDir := filepath.Join(t.TempDir(), "parts")
	slicer := &fakeSlicer{fail: map[string]bool{"part_001.mp3": true, "part_003.mp3": true, "part_005.mp3": true}}
	c := New(fakeProber{durationMs: 5 * 60_000, streams: 1}, slicer, logging.NewNop())

	report, err := c.Run(context.Background(), Request{Input: input, OutputDir: outDir, ChunkMinutes: 1, Format: "mp3"})
	if !errors.Is(err, services.ErrPartial) {
		t.Fatalf("expected partial failure, got %v", err)
	}
	if len(slicer.requests) != 5 {
		t.Fatalf("expected all 5 chunks attempted, got %d", len(slicer.requests))
	}
	if report.Summary() != "2/5" || report.Outcome() != batch.Partial {
		t.Fatalf("unexpected summary %s (%s)", report.Summary(), report.Outcome())
	}
	for _, name := range []string{"part_002.mp3", "part_004.mp3"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Fatalf("expected surviving chunk %s: %v", name, err)
		}
	}
}

func TestRunEveryChunkFailingIsTotalFailure(t *testing.T) {
	input := writeInput(t)
	outDir := filepath.Join(t.TempDir(), "parts")
	slicer := &fakeSlicer{fail: map[string]bool{"part_001.mp3": true, "part_002.mp3": true}}
	c := New(fakeProber{durationMs: 2 * 60_000, streams: 1}, slicer, logging.NewNop())

	report, err := c.Run(context.Background(), Request{Input: input, OutputDir: outDir, ChunkMinutes: 1, Format: "mp3"})
	if !errors.Is(err, services.ErrAllFailed) || errors.Is(err, services.ErrPartial) {
		t.Fatalf("expected total failure, got %v", err)
	}
	if services.Kind(err) != "total_failure" || report.Outcome() != batch.Failed {
		t.Fatalf("unexpected kind %q outcome %s", services.Kind(err), report.Outcome())
	}
}

func TestRunZeroDurationFails(t *testing.T) {
	input := writeInput(t)
	outDir := filepath.Join(t.TempDir(), "parts")
	c := New(fakeProber{durationMs: 0, streams: 1}, &fakeSlicer{}, logging.NewNop())

	_, err := c.Run(context.Background(), Request{Input: input, OutputDir: outDir, ChunkMinutes: 10})
	if !errors.Is(err, ErrNoAudio) {
		t.Fatalf("expected ErrNoAudio, got %v", err)
	}
	if _, statErr := os.Stat(outDir); !os.IsNotExist(statErr) {
		t.Fatalf("expected no output dir, stat err=%v", statErr)
	}
}

func TestRunNoAudioStreamFails(t *testing.T) {
	input := writeInput(t)
	c := New(fakeProber{durationMs: 60_000, streams: 0}, &fakeSlicer{}, logging.NewNop())
	if _, err := c.Run(context.Background(), Request{Input: input, ChunkMinutes: 10}); !errors.Is(err, ErrNoAudio) {
		t.Fatalf("expected ErrNoAudio, got %v", err)
	}
}

func TestRunMissingInput(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "parts")
	c := New(fakeProber{durationMs: 60_000, streams: 1}, &fakeSlicer{}, logging.NewNop())
	_, err := c.Run(context.Background(), Request{Input: filepath.Join(t.TempDir(), "missing.mp3"), OutputDir: outDir, ChunkMinutes: 10})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if services.Kind(err) != "input_missing" {
		t.Fatalf("unexpected kind %q", services.Kind(err))
	}
	if _, statErr := os.Stat(outDir); !os.IsNotExist(statErr) {
		t.Fatalf("expected no output dir, stat err=%v", statErr)
	}
}

func TestRunFormatDefaultsToInputExtension(t *testing.T) {
	input := writeInput(t)
	slicer := &fakeSlicer{}
	c := New(fakeProber{durationMs: 1000, streams: 1}, slicer, logging.NewNop())
	report, err := c.Run(context.Background(), Request{Input: input, ChunkMinutes: 10})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if filepath.Base(report.Chunks[0].Path) != "part_001.mp3" || slicer.requests[0].Format != "mp3" {
		t.Fatalf("unexpected chunk %+v", report.Chunks[0])
	}
}

func TestRunStopsOnCancellation(t *testing.T) {
	input := writeInput(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	slicer := &fakeSlicer{}
	c := New(fakeProber{durationMs: 5 * 60_000, streams: 1}, slicer, logging.NewNop())
	if _, err := c.Run(ctx, Request{Input: input, ChunkMinutes: 1}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(slicer.requests) != 0 {
		t.Fatalf("expected no slices after cancellation, got %d", len(slicer.requests))
	}
}
