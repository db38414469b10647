package main

import (
	"log/slog"
	"strings"

	"chunkscribe/internal/chunker"
	"chunkscribe/internal/config"
	"chunkscribe/internal/confirm"
	"chunkscribe/internal/converter"
	"chunkscribe/internal/media/ffprobe"
	"chunkscribe/internal/services"
	"chunkscribe/internal/transcriber"
)

func newConverter(cfg *config.Config, provider confirm.Provider, logger *slog.Logger) *converter.Converter {
	return converter.New(converter.FFmpegTool{Binary: cfg.FFmpegBinary()}, provider, logger)
}

func newChunker(cfg *config.Config, logger *slog.Logger) *chunker.Chunker {
	return chunker.New(
		ffprobe.Prober{Binary: cfg.FFprobeBinary()},
		chunker.FFmpegSlicer{Binary: cfg.FFmpegBinary(), Bitrate: cfg.Convert.AudioQuality},
		logger,
	)
}

func newTranscriber(cfg *config.Config, logger *slog.Logger) (*transcriber.Transcriber, error) {
	engine, err := transcriber.NewEngine(cfg.Transcribe)
	if err != nil {
		return nil, err
	}
	return transcriber.New(engine, logger), nil
}

// expandInput resolves ~ and relative paths in a positional argument.
func expandInput(arg string) (string, error) {
	path, err := config.ExpandPath(strings.TrimSpace(arg))
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "", "resolve path", arg, err)
	}
	return path, nil
}

// expandOptional expands a flag value, leaving empty values empty.
func expandOptional(value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	return expandInput(value)
}

// validated reruns config validation after flag overrides so flags get the
// same error messages as config keys.
func validated(cfg config.Config) (*config.Config, error) {
	if err := cfg.Validate(); err != nil {
		return nil, services.Wrap(services.ErrValidation, "", "flags", "", err)
	}
	return &cfg, nil
}

func normalizeFormat(value string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(value), "."))
}
