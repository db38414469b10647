package whisperx

// Config selects how whisperx is launched.
type Config struct {
	// UVXBinary runs whisperx from PyPI without a permanent install.
	UVXBinary   string
	CUDAEnabled bool
	// Model, when set, replaces the per-request model size with an explicit
	// whisperx checkpoint name.
	Model string
}

const (
	defaultUVX   = "uvx"
	pypiIndexURL = "https://pypi.org/simple"
	cudaIndexURL = "https://download.pytorch.org/whl/cu128"
)

// decodingArgs are passed on every run; output_format must stay json.
var decodingArgs = []string{
	"--batch_size", "4",
	"--chunk_size", "15",
	"--vad_method", "silero",
	"--vad_onset", "0.08",
	"--vad_offset", "0.07",
	"--beam_size", "10",
	"--best_of", "10",
	"--temperature", "0.0",
	"--patience", "1.0",
	"--segment_resolution", "sentence",
	"--output_format", "json",
}

// checkpoints maps configured size names to whisperx checkpoints where they differ.
var checkpoints = map[string]string{
	"large": "large-v3",
}

func modelFor(override, size string) string {
	if override != "" {
		return override
	}
	if size == "" {
		size = "large"
	}
	if name, ok := checkpoints[size]; ok {
		return name
	}
	return size
}

// InstallHints describe how to get uvx.
var InstallHints = []string{"curl -LsSf https://astral.sh/uv/install.sh | sh", "pipx install uv"}
