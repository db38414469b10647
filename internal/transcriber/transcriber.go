package transcriber

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"chunkscribe/internal/batch"
	langpkg "chunkscribe/internal/language"
	"chunkscribe/internal/logging"
	"chunkscribe/internal/services"
	"chunkscribe/internal/transcript"
)

const (
	stageName    = "transcribe"
	previewRunes = 100
)

// Engine turns one audio file into a transcript.
type Engine interface {
	Name() string
	Transcribe(ctx context.Context, path string, opts transcript.Options) (transcript.Result, error)
}

// Request configures a transcription run. Language accepts "auto".
type Request struct {
	Input     string
	OutputDir string
	Language  string
	Model     string
	Format    transcript.Format
}

// Output is one transcript written to disk.
type Output struct {
	Input    string `json:"input"`
	Path     string `json:"path"`
	Language string `json:"language"`
	Segments int    `json:"segments"`
}

// Report describes a transcription run.
type Report struct {
	batch.Report
	OutputDir string   `json:"output_dir"`
	Outputs   []Output `json:"outputs"`
}

// Err returns nil only when every file was transcribed.
func (r Report) Err() error {
	return r.Report.Err(stageName)
}

// Transcriber drives an Engine over a set of files.
type Transcriber struct {
	engine Engine
	logger *slog.Logger
}

// New constructs a Transcriber.
func New(engine Engine, logger *slog.Logger) *Transcriber {
	return &Transcriber{engine: engine, logger: logging.NewComponentLogger(logger, "transcriber")}
}

// Run transcribes every resolved input and writes <stem>.<format> files to
// the output directory.
func (t *Transcriber) Run(ctx context.Context, req Request) (Report, error) {
	report := Report{OutputDir: req.OutputDir}
	logger := logging.WithContext(ctx, t.logger)

	format := req.Format
	if format == "" {
		format = transcript.FormatText
	}
	if _, err := transcript.ParseFormat(string(format)); err != nil {
		return report, services.Wrap(services.ErrValidation, stageName, "select format", "", err)
	}
	files, err := ResolveInputs(req.Input)
	if err != nil {
		return report, err
	}
	if report.OutputDir == "" {
		report.OutputDir = DefaultOutputDir(req.Input)
	}
	if err := os.MkdirAll(report.OutputDir, 0o755); err != nil {
		return report, services.Wrap(services.ErrConfiguration, stageName, "create output dir", report.OutputDir, err)
	}

	opts := transcript.Options{Language: langpkg.Hint(req.Language), Model: req.Model}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	language := opts.Language
	if language == "" {
		language = langpkg.Auto
	}
	logger.Info("transcribing audio",
		logging.String("engine", t.engine.Name()),
		logging.String("model", req.Model),
		logging.String("language", language),
		logging.String("format", string(format)),
		logging.Int("total", len(files)),
		logging.String("files", strings.Join(names, ", ")),
		logging.String("output", report.OutputDir),
	)

	// Inputs sharing a stem (a.mp3, a.wav) map to the same transcript.
	written := make(map[string]string, len(files))
	for _, file := range files {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		name := filepath.Base(file)
		itemLogger := logging.WithContext(services.WithItem(ctx, name), t.logger)
		out, err := t.transcribeOne(ctx, file, report.OutputDir, format, opts)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			report.RecordFailure(name, err)
			hint := services.Hint(err)
			if hint == "" {
				hint = "inspect the engine error and retry this file"
			}
			logging.WarnWithContext(itemLogger, "transcription failed", "transcription_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "no transcript written for this file"),
				logging.String(logging.FieldErrorHint, hint),
			)
			continue
		}
		report.RecordSuccess()
		report.Outputs = append(report.Outputs, out.Output)
		if previous, ok := written[out.Path]; ok {
			logging.WarnWithContext(itemLogger, "transcript overwritten", "transcript_collision",
				logging.String("output", out.Path),
				logging.String("previous_input", previous),
				logging.String(logging.FieldImpact, "the earlier transcript for "+previous+" was replaced"),
				logging.String(logging.FieldErrorHint, "rename one of the inputs so their stems differ"),
			)
		}
		written[out.Path] = name
		itemLogger.Info("transcript saved",
			logging.String("output", out.Path),
			logging.String("detected_language", describeLanguage(out.Language)),
			logging.Int("segments", out.Segments),
			logging.String("preview", out.preview),
		)
	}

	if report.Outcome() == batch.Success {
		logger.Info("transcription complete",
			logging.Int("succeeded", report.Succeeded),
			logging.Int("total", report.Total),
			logging.String("output", report.OutputDir),
		)
	} else {
		logging.WarnWithContext(logger, "transcription incomplete", "transcription_partial",
			logging.Int("succeeded", report.Succeeded),
			logging.Int("total", report.Total),
			logging.String(logging.FieldImpact, fmt.Sprintf("%d files without transcripts", report.Failed())),
		)
	}
	return report, report.Err()
}

type fileResult struct {
	Output
	preview string
}

func (t *Transcriber) transcribeOne(ctx context.Context, file, outputDir string, format transcript.Format, opts transcript.Options) (fileResult, error) {
	result, err := t.engine.Transcribe(ctx, file, opts)
	if err != nil {
		return fileResult{}, err
	}
	data, err := transcript.Render(format, result)
	if err != nil {
		return fileResult{}, err
	}
	stem := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	path := filepath.Join(outputDir, stem+"."+format.Extension())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fileResult{}, fmt.Errorf("write transcript: %w", err)
	}
	detected := result.Language
	if detected == "" {
		detected = "unknown"
	}
	return fileResult{
		Output:  Output{Input: file, Path: path, Language: detected, Segments: len(result.Segments)},
		preview: transcript.Preview(result.Text, previewRunes),
	}, nil
}

func describeLanguage(code string) string {
	if code == "" || code == "unknown" {
		return "unknown"
	}
	return fmt.Sprintf("%s (%s)", langpkg.DisplayName(code), code)
}
