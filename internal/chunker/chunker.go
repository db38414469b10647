package chunker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"chunkscribe/internal/batch"
	"chunkscribe/internal/logging"
	"chunkscribe/internal/media/ffmpeg"
	"chunkscribe/internal/services"
)

const stageName = "chunk"

// Prober reports the audio duration of a file in milliseconds along with the
// number of audio streams it carries.
type Prober interface {
	Probe(ctx context.Context, path string) (durationMs int64, audioStreams int, err error)
}

// SliceRequest describes one part to write.
type SliceRequest struct {
	Input   string
	Output  string
	StartMs int64
	EndMs   int64
	Format  string
}

// Slicer writes one time range of the source as an independent file.
type Slicer interface {
	Slice(ctx context.Context, req SliceRequest) error
}

// FFmpegSlicer cuts parts with ffmpeg, re-encoding to the requested format.
type FFmpegSlicer struct {
	Binary  string
	Bitrate string
}

// Slice implements Slicer.
func (s FFmpegSlicer) Slice(ctx context.Context, req SliceRequest) error {
	codec, err := ffmpeg.AudioCodec(req.Format)
	if err != nil {
		return err
	}
	args := ffmpeg.SliceArgs(req.Input, req.Output, req.StartMs, req.EndMs-req.StartMs, codec, s.Bitrate)
	_, err = ffmpeg.Run(ctx, s.Binary, args...)
	return err
}

// Request configures a chunking run.
type Request struct {
	Input        string
	OutputDir    string
	ChunkMinutes int
	Format       string
}

// Chunk is one part written to disk.
type Chunk struct {
	Index   int    `json:"index"`
	StartMs int64  `json:"start_ms"`
	EndMs   int64  `json:"end_ms"`
	Path    string `json:"path"`
}

// Report describes a chunking run.
type Report struct {
	batch.Report
	Input      string  `json:"input"`
	OutputDir  string  `json:"output_dir"`
	DurationMs int64   `json:"duration_ms"`
	Chunks     []Chunk `json:"chunks"`
}

// Err returns nil only when every planned part was written.
func (r Report) Err() error {
	return r.Report.Err(stageName)
}

// Chunker writes fixed-duration parts of an audio file.
type Chunker struct {
	prober Prober
	slicer Slicer
	logger *slog.Logger
}

// New constructs a Chunker.
func New(prober Prober, slicer Slicer, logger *slog.Logger) *Chunker {
	return &Chunker{
		prober: prober,
		slicer: slicer,
		logger: logging.NewComponentLogger(logger, "chunker"),
	}
}

// DefaultOutputDir returns <dir>/<stem>_chunks for input.
func DefaultOutputDir(input string) string {
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(filepath.Dir(input), stem+"_chunks")
}

// Run plans and writes every part. The returned error is non-nil when the
// source is unusable or when any part failed; the report is populated in
// both cases.
func (c *Chunker) Run(ctx context.Context, req Request) (Report, error) {
	report := Report{Input: req.Input, OutputDir: req.OutputDir}
	logger := logging.WithContext(ctx, c.logger)

	info, err := os.Stat(req.Input)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return report, services.Wrap(services.ErrNotFound, stageName, "stat input", req.Input, err)
		}
		return report, services.Wrap(services.ErrValidation, stageName, "stat input", req.Input, err)
	}
	if info.IsDir() {
		return report, services.Wrap(services.ErrValidation, stageName, "stat input", req.Input+" is a directory", nil)
	}
	if req.ChunkMinutes <= 0 {
		return report, services.Wrap(services.ErrValidation, stageName, "plan", fmt.Sprintf("chunk duration must be positive, got %d", req.ChunkMinutes), nil)
	}
	format := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(req.Format), "."))
	if format == "" {
		format = strings.ToLower(strings.TrimPrefix(filepath.Ext(req.Input), "."))
	}
	if report.OutputDir == "" {
		report.OutputDir = DefaultOutputDir(req.Input)
	}

	totalMs, streams, err := c.prober.Probe(ctx, req.Input)
	if err != nil {
		return report, services.Wrap(services.ErrExternalTool, stageName, "probe duration", req.Input, err)
	}
	report.DurationMs = totalMs
	if streams == 0 {
		totalMs = 0
	}
	spans, err := Plan(totalMs, MinutesToMillis(req.ChunkMinutes))
	if err != nil {
		return report, services.Wrap(services.ErrValidation, stageName, "plan", req.Input, err)
	}

	if err := os.MkdirAll(report.OutputDir, 0o755); err != nil {
		return report, services.Wrap(services.ErrConfiguration, stageName, "create output dir", report.OutputDir, err)
	}

	logger.Info("chunking audio",
		logging.String("input", req.Input),
		logging.String("output", report.OutputDir),
		logging.Float64("duration_minutes", minutes(totalMs)),
		logging.Int("chunk_minutes", req.ChunkMinutes),
		logging.Int("total", len(spans)),
	)

	for _, span := range spans {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		name := ChunkFileName(span.Index, format)
		path := filepath.Join(report.OutputDir, name)
		itemLogger := logging.WithContext(services.WithItem(ctx, name), c.logger)
		err := c.slicer.Slice(ctx, SliceRequest{
			Input:   req.Input,
			Output:  path,
			StartMs: span.StartMs,
			EndMs:   span.EndMs,
			Format:  format,
		})
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			report.RecordFailure(name, err)
			hint := services.Hint(err)
			if hint == "" {
				hint = "inspect the ffmpeg diagnostics in the error field"
			}
			logging.WarnWithContext(itemLogger, "chunk write failed", "chunk_write_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "chunk missing from output directory"),
				logging.String(logging.FieldErrorHint, hint),
			)
			continue
		}
		report.RecordSuccess()
		report.Chunks = append(report.Chunks, Chunk{Index: span.Index, StartMs: span.StartMs, EndMs: span.EndMs, Path: path})
		itemLogger.Info("chunk written",
			logging.String("output", path),
			logging.Float64("duration_minutes", minutes(span.DurationMs())),
		)
	}

	if report.Outcome() == batch.Success {
		logger.Info("chunking complete",
			logging.Int("succeeded", report.Succeeded),
			logging.Int("total", report.Total),
			logging.String("output", report.OutputDir),
		)
	} else {
		logging.WarnWithContext(logger, "chunking incomplete", "chunking_partial",
			logging.Int("succeeded", report.Succeeded),
			logging.Int("total", report.Total),
			logging.String(logging.FieldImpact, fmt.Sprintf("%d chunks missing", report.Failed())),
		)
	}
	return report, report.Err()
}

func minutes(ms int64) float64 {
	return float64(ms) / 60_000
}
