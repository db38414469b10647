package converter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"chunkscribe/internal/confirm"
	"chunkscribe/internal/logging"
	"chunkscribe/internal/media/ffmpeg"
	"chunkscribe/internal/services"
)

const stageName = "convert"

// Request is what a Tool needs to produce one audio file.
type Request struct {
	Input      string
	Output     string
	StripVideo bool
	Codec      string
	Bitrate    string
	Overwrite  bool
}

// Result carries the tool's diagnostic output.
type Result struct {
	Diagnostics string
}

// Tool performs the actual conversion.
type Tool interface {
	Convert(ctx context.Context, req Request) (Result, error)
}

// FFmpegTool converts with the ffmpeg binary.
type FFmpegTool struct {
	Binary string
}

// Convert implements Tool.
func (t FFmpegTool) Convert(ctx context.Context, req Request) (Result, error) {
	args := ffmpeg.ExtractArgs(req.Input, req.Output, req.StripVideo, req.Codec, req.Bitrate, req.Overwrite)
	diagnostics, err := ffmpeg.Run(ctx, t.Binary, args...)
	return Result{Diagnostics: diagnostics}, err
}

// Options configures one conversion.
type Options struct {
	Input   string
	Output  string
	Format  string
	Bitrate string
}

// Converter validates inputs, guards existing outputs, and delegates to a Tool.
type Converter struct {
	tool    Tool
	confirm confirm.Provider
	logger  *slog.Logger
}

// New constructs a Converter. A nil provider declines every overwrite.
func New(tool Tool, provider confirm.Provider, logger *slog.Logger) *Converter {
	if provider == nil {
		provider = confirm.Static(false)
	}
	return &Converter{
		tool:    tool,
		confirm: provider,
		logger:  logging.NewComponentLogger(logger, "converter"),
	}
}

// DefaultOutputPath returns <stem>.<format>, relative to the working directory.
func DefaultOutputPath(input, format string) string {
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return stem + "." + strings.TrimPrefix(strings.ToLower(format), ".")
}

// Run converts opts.Input and returns the path written.
func (c *Converter) Run(ctx context.Context, opts Options) (string, error) {
	logger := logging.WithContext(ctx, c.logger)

	info, err := os.Stat(opts.Input)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", services.Wrap(services.ErrNotFound, stageName, "stat input", opts.Input, err)
		}
		return "", services.Wrap(services.ErrValidation, stageName, "stat input", opts.Input, err)
	}
	if info.IsDir() {
		return "", services.Wrap(services.ErrValidation, stageName, "stat input", opts.Input+" is a directory", nil)
	}

	codec, err := ffmpeg.AudioCodec(opts.Format)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, stageName, "select codec", "", err)
	}
	output := opts.Output
	if output == "" {
		output = DefaultOutputPath(opts.Input, opts.Format)
	}
	if samePath(opts.Input, output) {
		return "", services.Wrap(services.ErrValidation, stageName, "resolve output", "output would overwrite the input "+output, nil)
	}

	overwrite := false
	if _, err := os.Stat(output); err == nil {
		ok, err := c.confirm.Confirm(ctx, fmt.Sprintf("Output file %s already exists. Overwrite?", output))
		if err != nil {
			return "", services.Wrap(services.ErrCancelled, stageName, "confirm overwrite", output, err)
		}
		if !ok {
			logger.Info("conversion cancelled", logging.String("output", output), logging.String("reason", "overwrite declined"))
			return "", services.Wrap(services.ErrCancelled, stageName, "confirm overwrite", "existing output kept: "+output, nil)
		}
		overwrite = true
	}
	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", services.Wrap(services.ErrConfiguration, stageName, "create output dir", dir, err)
		}
	}

	logger.Info("converting to audio",
		logging.String("input", opts.Input),
		logging.String("output", output),
		logging.String("codec", codec),
		logging.String("bitrate", opts.Bitrate),
	)
	result, err := c.tool.Convert(ctx, Request{
		Input:      opts.Input,
		Output:     output,
		StripVideo: true,
		Codec:      codec,
		Bitrate:    opts.Bitrate,
		Overwrite:  overwrite,
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		marker := services.ErrExternalTool
		if errors.Is(err, services.ErrToolMissing) {
			marker = services.ErrToolMissing
		}
		return "", services.Wrap(marker, stageName, "ffmpeg", "", err)
	}
	if result.Diagnostics != "" {
		logger.Debug("converter diagnostics", logging.String("stderr", result.Diagnostics))
	}

	attrs := []logging.Attr{logging.String("output", output)}
	if stat, err := os.Stat(output); err == nil {
		attrs = append(attrs, logging.Int64("size_bytes", stat.Size()))
	}
	logger.Info("conversion complete", logging.Args(attrs...)...)
	return output, nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
