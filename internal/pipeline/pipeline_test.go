package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chunkscribe/internal/chunker"
	"chunkscribe/internal/confirm"
	"chunkscribe/internal/converter"
	"chunkscribe/internal/fileutil"
	"chunkscribe/internal/pipeline"
	"chunkscribe/internal/services"
	"chunkscribe/internal/transcriber"
	"chunkscribe/internal/transcript"
)

type fakeTool struct {
	calls int
	err   error
}

func (f *fakeTool) Convert(_ context.Context, req converter.Request) (converter.Result, error) {
	f.calls++
	if f.err != nil {
		return converter.Result{}, f.err
	}
	return converter.Result{}, os.WriteFile(req.Output, []byte("audio"), 0o644)
}

type fakeProber struct{ durationMs int64 }

func (f fakeProber) Probe(context.Context, string) (int64, int, error) {
	return f.durationMs, 1, nil
}

type fakeSlicer struct{ inputs []string }

func (f *fakeSlicer) Slice(_ context.Context, req chunker.SliceRequest) error {
	f.inputs = append(f.inputs, req.Input)
	return os.WriteFile(req.Output, []byte("part"), 0o644)
}

type fakeEngine struct{ inputs []string }

func (*fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Transcribe(_ context.Context, path string, _ transcript.Options) (transcript.Result, error) {
	f.inputs = append(f.inputs, path)
	return transcript.Result{
		Text:     "hello world",
		Language: "en",
		Segments: []transcript.Segment{{Start: 0, End: 1.5, Text: "hello world"}},
	}, nil
}

type recorder struct {
	started  int
	stages   []pipeline.StageReport
	finished []pipeline.Report
}

func (r *recorder) RunStarted(context.Context, pipeline.Report) { r.started++ }

func (r *recorder) StageFinished(_ context.Context, _ pipeline.Report, stage pipeline.StageReport) {
	r.stages = append(r.stages, stage)
}

func (r *recorder) RunFinished(_ context.Context, report pipeline.Report) {
	r.finished = append(r.finished, report)
}

type harness struct {
	tool   *fakeTool
	slicer *fakeSlicer
	engine *fakeEngine
	comps  pipeline.Components
}

func newHarness(durationMs int64) *harness {
	h := &harness{tool: &fakeTool{}, slicer: &fakeSlicer{}, engine: &fakeEngine{}}
	h.comps = pipeline.Components{
		Converter:   converter.New(h.tool, confirm.Static(false), nil),
		Chunker:     chunker.New(fakeProber{durationMs: durationMs}, h.slicer, nil),
		Transcriber: transcriber.New(h.engine, nil),
	}
	return h
}

func writeInput(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("video"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func baseConfig(input string) pipeline.Config {
	return pipeline.Config{
		Input:        input,
		AudioFormat:  "mp3",
		AudioQuality: "192k",
		ChunkMinutes: 10,
		Language:     "auto",
		Model:        "base",
		Format:       transcript.FormatSRT,
	}
}

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "lecture.mp4")
	cfg := baseConfig(input)
	layout := pipeline.NewLayout(input, "", cfg.AudioFormat)
	h := newHarness(5 * 60 * 1000)
	obs := &recorder{}

	p := pipeline.New(nil, pipeline.Steps(cfg, layout, h.comps),
		pipeline.WithObserver(obs),
		pipeline.WithRunID(func() string { return "run-1" }),
	)
	report := p.Run(context.Background(), input, layout)
	if !report.OK() {
		t.Fatalf("expected success, got %v", report.Err)
	}
	if report.RunID != "run-1" || report.Status() != "succeeded" {
		t.Fatalf("unexpected report header: %+v", report)
	}

	for _, path := range []string{
		filepath.Join(dir, "lecture.mp3"),
		filepath.Join(dir, "lecture_chunks", "part_001.mp3"),
		filepath.Join(dir, "lecture_transcripts", "part_001.srt"),
	} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s: %v", path, err)
		}
	}
	data, err := os.ReadFile(filepath.Join(dir, "lecture_transcripts", "part_001.srt"))
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	if !strings.Contains(string(data), "00:00:00,000 --> 00:00:01,500") {
		t.Fatalf("unexpected srt body: %q", data)
	}
	if _, err := os.Stat(filepath.Join(dir, fileutil.LockFileName)); !os.IsNotExist(err) {
		t.Fatalf("expected lock file to be removed, got %v", err)
	}

	if len(h.slicer.inputs) != 1 || h.slicer.inputs[0] != layout.Audio {
		t.Fatalf("chunker should read converted audio, got %v", h.slicer.inputs)
	}
	if len(h.engine.inputs) != 1 || filepath.Dir(h.engine.inputs[0]) != layout.ChunksDir {
		t.Fatalf("transcriber should read chunk dir, got %v", h.engine.inputs)
	}
	if obs.started != 1 || len(obs.stages) != 3 || len(obs.finished) != 1 {
		t.Fatalf("unexpected observer calls: started=%d stages=%d finished=%d", obs.started, len(obs.stages), len(obs.finished))
	}
	stage, ok := report.Stage(pipeline.StageTranscribe)
	if !ok || stage.Status != pipeline.StatusSucceeded || stage.Succeeded != 1 || stage.Total != 1 {
		t.Fatalf("unexpected transcribe report: %+v", stage)
	}
}

func TestRunNotifiesEveryObserver(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "lecture.mp4")
	cfg := baseConfig(input)
	layout := pipeline.NewLayout(input, "", cfg.AudioFormat)
	h := newHarness(60 * 1000)
	ledger, notifier := &recorder{}, &recorder{}

	report := pipeline.New(nil, pipeline.Steps(cfg, layout, h.comps),
		pipeline.WithObserver(ledger),
		pipeline.WithObserver(nil),
		pipeline.WithObserver(notifier),
	).Run(context.Background(), input, layout)
	if !report.OK() {
		t.Fatalf("expected success, got %v", report.Err)
	}
	for name, obs := range map[string]*recorder{"ledger": ledger, "notifier": notifier} {
		if obs.started != 1 || len(obs.stages) != 3 || len(obs.finished) != 1 {
			t.Fatalf("%s: unexpected observer calls: started=%d stages=%d finished=%d", name, obs.started, len(obs.stages), len(obs.finished))
		}
	}
}

func TestRunFailFastLeavesLaterStagesUntouched(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "lecture.mp4")
	cfg := baseConfig(input)
	layout := pipeline.NewLayout(input, "", cfg.AudioFormat)
	h := newHarness(5 * 60 * 1000)
	h.tool.err = services.Wrap(services.ErrExternalTool, "convert", "ffmpeg", "exit status 1", nil)

	report := pipeline.New(nil, pipeline.Steps(cfg, layout, h.comps)).Run(context.Background(), input, layout)
	if report.OK() {
		t.Fatal("expected failure")
	}
	if !errors.Is(report.Err, services.ErrExternalTool) || report.ErrorKind != "stage_failure" {
		t.Fatalf("unexpected error: %v (%s)", report.Err, report.ErrorKind)
	}
	want := []pipeline.StageStatus{pipeline.StatusFailed, pipeline.StatusNotRun, pipeline.StatusNotRun}
	for i, stage := range report.Stages {
		if stage.Status != want[i] {
			t.Fatalf("stage %s: got %s want %s", stage.Name, stage.Status, want[i])
		}
	}
	for _, path := range []string{layout.ChunksDir, layout.TranscriptsDir} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("expected %s to be absent, got %v", path, err)
		}
	}
	if len(h.engine.inputs) != 0 {
		t.Fatal("transcriber must not run after a failure")
	}
}

func TestRunSkipPassesInputThrough(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "talk.wav")
	cfg := baseConfig(input)
	cfg.SkipConvert = true
	cfg.SkipChunk = true
	layout := pipeline.NewLayout(input, filepath.Join(dir, "out"), cfg.AudioFormat)
	h := newHarness(5 * 60 * 1000)

	report := pipeline.New(nil, pipeline.Steps(cfg, layout, h.comps)).Run(context.Background(), input, layout)
	if !report.OK() {
		t.Fatalf("expected success, got %v", report.Err)
	}
	if h.tool.calls != 0 || len(h.slicer.inputs) != 0 {
		t.Fatal("skipped stages must not run")
	}
	if len(h.engine.inputs) != 1 || h.engine.inputs[0] != input {
		t.Fatalf("transcriber should receive the original input, got %v", h.engine.inputs)
	}
	convert, _ := report.Stage(pipeline.StageConvert)
	if convert.Status != pipeline.StatusSkipped || convert.Output != input {
		t.Fatalf("unexpected skipped stage: %+v", convert)
	}
	if _, err := os.Stat(filepath.Join(layout.TranscriptsDir, "talk.srt")); err != nil {
		t.Fatalf("expected transcript: %v", err)
	}
}

func TestRunPartialChunkingHalts(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "talk.mp3")
	cfg := baseConfig(input)
	cfg.SkipConvert = true
	layout := pipeline.NewLayout(input, "", cfg.AudioFormat)
	h := newHarness(0)

	report := pipeline.New(nil, pipeline.Steps(cfg, layout, h.comps)).Run(context.Background(), input, layout)
	if report.OK() {
		t.Fatal("expected zero-duration audio to halt the run")
	}
	chunk, _ := report.Stage(pipeline.StageChunk)
	if chunk.Status != pipeline.StatusFailed {
		t.Fatalf("unexpected chunk status: %s", chunk.Status)
	}
	transcribe, _ := report.Stage(pipeline.StageTranscribe)
	if transcribe.Status != pipeline.StatusNotRun {
		t.Fatalf("unexpected transcribe status: %s", transcribe.Status)
	}
}

func TestRunMissingInputHasNoSideEffects(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "missing.mp4")
	cfg := baseConfig(input)
	layout := pipeline.NewLayout(input, filepath.Join(dir, "out"), cfg.AudioFormat)
	h := newHarness(1000)
	obs := &recorder{}

	report := pipeline.New(nil, pipeline.Steps(cfg, layout, h.comps), pipeline.WithObserver(obs)).Run(context.Background(), input, layout)
	if !errors.Is(report.Err, services.ErrNotFound) || report.ErrorKind != "input_missing" {
		t.Fatalf("expected input_missing, got %v (%s)", report.Err, report.ErrorKind)
	}
	if _, err := os.Stat(layout.OutputDir); !os.IsNotExist(err) {
		t.Fatalf("expected no output dir, got %v", err)
	}
	if h.tool.calls != 0 || obs.started != 0 || len(obs.finished) != 1 {
		t.Fatalf("unexpected activity: tool=%d started=%d finished=%d", h.tool.calls, obs.started, len(obs.finished))
	}
}

func TestRunRefusesLockedOutputDir(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "lecture.mp4")
	cfg := baseConfig(input)
	layout := pipeline.NewLayout(input, "", cfg.AudioFormat)
	lock, err := fileutil.LockDir(layout.OutputDir)
	if err != nil {
		t.Fatalf("LockDir: %v", err)
	}
	defer lock.Unlock()
	h := newHarness(1000)

	report := pipeline.New(nil, pipeline.Steps(cfg, layout, h.comps)).Run(context.Background(), input, layout)
	if !errors.Is(report.Err, fileutil.ErrLocked) {
		t.Fatalf("expected lock error, got %v", report.Err)
	}
	if h.tool.calls != 0 {
		t.Fatal("no stage should run while the directory is locked")
	}
}
