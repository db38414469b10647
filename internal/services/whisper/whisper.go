// Package whisper runs the openai-whisper command-line tool and reads back its
// JSON transcript.
package whisper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"chunkscribe/internal/services"
	"chunkscribe/internal/transcript"
)

// DefaultBinary is the executable name installed by `pip install openai-whisper`.
const DefaultBinary = "whisper"

// InstallHints describe how to get the whisper CLI.
var InstallHints = []string{"pip install openai-whisper"}

// Engine transcribes audio with the whisper CLI.
type Engine struct {
	binary        string
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// New creates an Engine using binary, or DefaultBinary when empty.
func New(binary string) *Engine {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = DefaultBinary
	}
	return &Engine{binary: binary}
}

// WithCommandRunner sets a custom command runner (for testing).
func (e *Engine) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	e.commandRunner = runner
}

// Name identifies the engine in logs.
func (e *Engine) Name() string { return "whisper" }

// Transcribe runs whisper on path and decodes the JSON it writes.
func (e *Engine) Transcribe(ctx context.Context, path string, opts transcript.Options) (transcript.Result, error) {
	workDir, err := os.MkdirTemp("", "chunkscribe-whisper-")
	if err != nil {
		return transcript.Result{}, fmt.Errorf("whisper: create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	if err := e.run(ctx, e.binary, buildArgs(path, workDir, opts)...); err != nil {
		return transcript.Result{}, err
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	data, err := os.ReadFile(filepath.Join(workDir, stem+".json"))
	if err != nil {
		return transcript.Result{}, fmt.Errorf("whisper: read output: %w", err)
	}
	return transcript.DecodeWhisperJSON(data)
}

func buildArgs(path, outputDir string, opts transcript.Options) []string {
	args := []string{
		path,
		"--model", opts.Model,
		"--output_format", "json",
		"--output_dir", outputDir,
		"--verbose", "False",
	}
	if opts.Language != "" {
		args = append(args, "--language", opts.Language)
	}
	return args
}

func (e *Engine) run(ctx context.Context, name string, args ...string) error {
	if e.commandRunner != nil {
		return e.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return &services.MissingToolError{Tool: name, Install: InstallHints, Err: err}
		}
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
