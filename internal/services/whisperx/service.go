package whisperx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	langpkg "chunkscribe/internal/language"
	"chunkscribe/internal/services"
	"chunkscribe/internal/transcript"
)

// Service provides WhisperX transcription capabilities.
type Service struct {
	cfg           Config
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a WhisperX service with the given configuration.
func NewService(cfg Config) *Service {
	if strings.TrimSpace(cfg.UVXBinary) == "" {
		cfg.UVXBinary = defaultUVX
	}
	return &Service{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Name identifies the engine in logs.
func (s *Service) Name() string { return "whisperx" }

// CUDAEnabled returns whether CUDA is enabled.
func (s *Service) CUDAEnabled() bool {
	return s.cfg.CUDAEnabled
}

// run executes a command, using the custom runner if set.
func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec

	// Torch 2.6 changed torch.load default to weights_only=true, breaking WhisperX/pyannote.
	// Force legacy behavior so WhisperX can load checkpoints safely.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return &services.MissingToolError{Tool: name, Install: InstallHints, Err: err}
		}
		return fmt.Errorf("%s: %w: %s", name, err, lastLines(output.String(), 20))
	}
	return nil
}

// Transcribe runs WhisperX against source and loads the JSON it writes.
func (s *Service) Transcribe(ctx context.Context, source string, opts transcript.Options) (transcript.Result, error) {
	if source == "" {
		return transcript.Result{}, fmt.Errorf("whisperx: source path required")
	}
	outputDir, err := os.MkdirTemp("", "chunkscribe-whisperx-")
	if err != nil {
		return transcript.Result{}, fmt.Errorf("whisperx: create work dir: %w", err)
	}
	defer os.RemoveAll(outputDir)

	args := s.buildArgs(source, outputDir, opts)
	if err := s.run(ctx, s.cfg.UVXBinary, args...); err != nil {
		return transcript.Result{}, fmt.Errorf("whisperx: %w", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	data, err := os.ReadFile(filepath.Join(outputDir, baseName+".json"))
	if err != nil {
		return transcript.Result{}, fmt.Errorf("whisperx: read output: %w", err)
	}
	result, err := transcript.DecodeWhisperJSON(data)
	if err != nil {
		return transcript.Result{}, fmt.Errorf("whisperx: %w", err)
	}
	if result.Language == "" {
		result.Language = opts.Language
	}
	return result, nil
}

// buildArgs constructs the uvx command line for one source file.
func (s *Service) buildArgs(source, outputDir string, opts transcript.Options) []string {
	args := make([]string, 0, 40)
	if s.cfg.CUDAEnabled {
		args = append(args, "--index-url", cudaIndexURL, "--extra-index-url", pypiIndexURL)
	} else {
		args = append(args, "--index-url", pypiIndexURL)
	}

	args = append(args,
		"whisperx",
		source,
		"--model", modelFor(s.cfg.Model, opts.Model),
		"--output_dir", outputDir,
	)
	args = append(args, decodingArgs...)

	if lang := langpkg.ToISO2(opts.Language); lang != "" {
		args = append(args, "--language", lang)
	}
	if s.cfg.CUDAEnabled {
		args = append(args, "--device", "cuda")
	} else {
		args = append(args, "--device", "cpu", "--compute_type", "float32")
	}
	return args
}

func lastLines(output string, n int) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
