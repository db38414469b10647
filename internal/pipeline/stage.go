package pipeline

import (
	"context"

	"chunkscribe/internal/chunker"
	"chunkscribe/internal/converter"
	"chunkscribe/internal/transcriber"
	"chunkscribe/internal/transcript"
)

// Stage names.
const (
	StageConvert    = "convert"
	StageChunk      = "chunk"
	StageTranscribe = "transcribe"
)

// Result is what a stage hands to the next one.
type Result struct {
	Output    string
	Succeeded int
	Total     int
}

// Stage is one step of the pipeline. Run receives the most recent artifact
// location and returns the location of what it produced.
type Stage interface {
	Name() string
	Run(ctx context.Context, input string) (Result, error)
}

// ConvertStage extracts audio from the input.
type ConvertStage struct {
	Converter *converter.Converter
	Output    string
	Format    string
	Bitrate   string
}

func (ConvertStage) Name() string { return StageConvert }

func (s ConvertStage) Run(ctx context.Context, input string) (Result, error) {
	out, err := s.Converter.Run(ctx, converter.Options{
		Input:   input,
		Output:  s.Output,
		Format:  s.Format,
		Bitrate: s.Bitrate,
	})
	if err != nil {
		return Result{Total: 1}, err
	}
	return Result{Output: out, Succeeded: 1, Total: 1}, nil
}

// ChunkStage splits audio into parts.
type ChunkStage struct {
	Chunker   *chunker.Chunker
	OutputDir string
	Minutes   int
	Format    string
}

func (ChunkStage) Name() string { return StageChunk }

func (s ChunkStage) Run(ctx context.Context, input string) (Result, error) {
	report, err := s.Chunker.Run(ctx, chunker.Request{
		Input:        input,
		OutputDir:    s.OutputDir,
		ChunkMinutes: s.Minutes,
		Format:       s.Format,
	})
	return Result{Output: report.OutputDir, Succeeded: report.Succeeded, Total: report.Total}, err
}

// TranscribeStage writes transcripts for a file or a directory of parts.
type TranscribeStage struct {
	Transcriber *transcriber.Transcriber
	OutputDir   string
	Language    string
	Model       string
	Format      transcript.Format
}

func (TranscribeStage) Name() string { return StageTranscribe }

func (s TranscribeStage) Run(ctx context.Context, input string) (Result, error) {
	report, err := s.Transcriber.Run(ctx, transcriber.Request{
		Input:     input,
		OutputDir: s.OutputDir,
		Language:  s.Language,
		Model:     s.Model,
		Format:    s.Format,
	})
	return Result{Output: report.OutputDir, Succeeded: report.Succeeded, Total: report.Total}, err
}

// Config is resolved once per run and never mutated.
type Config struct {
	Input          string
	OutputDir      string
	AudioFormat    string
	AudioQuality   string
	ChunkMinutes   int
	Language       string
	Model          string
	Format         transcript.Format
	SkipConvert    bool
	SkipChunk      bool
	SkipTranscribe bool
}

// Components are the stage implementations a pipeline drives.
type Components struct {
	Converter   *converter.Converter
	Chunker     *chunker.Chunker
	Transcriber *transcriber.Transcriber
}

// Steps wires the three stages in order for cfg.
func Steps(cfg Config, layout Layout, c Components) []Step {
	return []Step{
		{
			Stage: ConvertStage{Converter: c.Converter, Output: layout.Audio, Format: cfg.AudioFormat, Bitrate: cfg.AudioQuality},
			Skip:  cfg.SkipConvert,
		},
		{
			Stage: ChunkStage{Chunker: c.Chunker, OutputDir: layout.ChunksDir, Minutes: cfg.ChunkMinutes, Format: cfg.AudioFormat},
			Skip:  cfg.SkipChunk,
		},
		{
			Stage: TranscribeStage{Transcriber: c.Transcriber, OutputDir: layout.TranscriptsDir, Language: cfg.Language, Model: cfg.Model, Format: cfg.Format},
			Skip:  cfg.SkipTranscribe,
		},
	}
}
