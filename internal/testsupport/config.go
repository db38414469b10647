package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"chunkscribe/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// Canned stub scripts. FFmpeg writes its last argument, FFprobe reports
// 750 seconds of audio, and Whisper writes a one-segment JSON transcript.
const (
	FFmpegScript = `#!/bin/sh
for last; do :; done
printf 'audio' > "$last"
`
	FFprobeScript = `#!/bin/sh
printf '{"streams":[{"index":0,"codec_type":"audio","duration":"750.0"}],"format":{"duration":"750.0","nb_streams":1}}'
`
	WhisperScript = `#!/bin/sh
in="$1"
shift
while [ $# -gt 0 ]; do
  if [ "$1" = "--output_dir" ]; then out="$2"; fi
  shift
done
name=$(basename "$in")
stem="${name%.*}"
printf '{"text":" hello there","language":"en","segments":[{"start":0,"end":1.5,"text":" hello there"}]}' > "$out/$stem.json"
`
	FailingScript = `#!/bin/sh
echo 'Invalid data found when processing input' >&2
exit 1
`
)

// WithStubbedBinaries writes the canned ffmpeg, ffprobe, and whisper stubs
// and points the config at them.
func WithStubbedBinaries() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Convert.FFmpegBinary = b.writeStub("ffmpeg", FFmpegScript)
		b.cfg.Convert.FFprobeBinary = b.writeStub("ffprobe", FFprobeScript)
		b.cfg.Transcribe.WhisperBinary = b.writeStub("whisper", WhisperScript)
	}
}

// WithScript replaces one tool with a custom script. tool is one of
// "ffmpeg", "ffprobe", or "whisper".
func WithScript(tool, script string) ConfigOption {
	return func(b *configBuilder) {
		path := b.writeStub(tool+"-custom", script)
		switch tool {
		case "ffmpeg":
			b.cfg.Convert.FFmpegBinary = path
		case "ffprobe":
			b.cfg.Convert.FFprobeBinary = path
		case "whisper":
			b.cfg.Transcribe.WhisperBinary = path
		default:
			b.t.Fatalf("unknown stub tool %q", tool)
		}
	}
}

// WithMissingBinary points tool at a path that does not exist.
func WithMissingBinary(tool string) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, "bin", "missing-"+tool)
		switch tool {
		case "ffmpeg":
			b.cfg.Convert.FFmpegBinary = path
		case "ffprobe":
			b.cfg.Convert.FFprobeBinary = path
		case "whisper":
			b.cfg.Transcribe.WhisperBinary = path
		default:
			b.t.Fatalf("unknown stub tool %q", tool)
		}
	}
}

// WithLogDir enables the log file under the test's temp directory.
func WithLogDir() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.LogDir = filepath.Join(b.baseDir, "logs")
	}
}

// WithNtfyTopic enables notifications against topic, typically an httptest URL.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
		b.cfg.Notifications.RequestTimeout = 5
	}
}

func (b *configBuilder) writeStub(name, script string) string {
	b.t.Helper()
	if runtime.GOOS == "windows" {
		b.t.Skip("shell stubs require a POSIX shell")
	}
	binDir := filepath.Join(b.baseDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		b.t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(binDir, name)
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		b.t.Fatalf("write stub %s: %v", name, err)
	}
	return target
}

// WriteConfig encodes cfg as TOML next to its state directory and returns
// the file path.
func WriteConfig(t testing.TB, cfg *config.Config) string {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(BaseDir(cfg), "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}

// MediaPath returns a path under the config's media directory.
func MediaPath(cfg *config.Config, name string) string {
	return filepath.Join(BaseDir(cfg), "media", name)
}

// String returns a short description of the stubbed tools, for failure messages.
func String(cfg *config.Config) string {
	return fmt.Sprintf("ffmpeg=%s ffprobe=%s whisper=%s", cfg.Convert.FFmpegBinary, cfg.Convert.FFprobeBinary, cfg.Transcribe.WhisperBinary)
}
