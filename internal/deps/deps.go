// Package deps checks that the external binaries chunkscribe shells out to
// are installed.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"chunkscribe/internal/config"
	"chunkscribe/internal/media/ffmpeg"
	"chunkscribe/internal/services/whisper"
	"chunkscribe/internal/services/whisperx"
)

// Requirement is one external binary and how to install it.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Install     []string
}

// Status is a Requirement plus the outcome of looking it up on PATH.
type Status struct {
	Requirement
	Available bool
	// Detail is the resolved path, or why the lookup failed.
	Detail string
}

// Requirements lists the binaries needed for cfg. Engines other than the
// configured one are reported as optional.
func Requirements(cfg *config.Config) []Requirement {
	reqs := []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for conversion and cutting",
			Install:     ffmpeg.InstallHints,
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Required to measure audio duration",
			Install:     ffmpeg.InstallHints,
		},
	}
	engine := cfg.Transcribe.Engine
	reqs = append(reqs,
		Requirement{
			Name:        "whisper",
			Command:     cfg.Transcribe.WhisperBinary,
			Description: "Local transcription engine",
			Optional:    engine != config.EngineWhisper,
			Install:     whisper.InstallHints,
		},
		Requirement{
			Name:        "uvx",
			Command:     cfg.Transcribe.UVXBinary,
			Description: "Runs WhisperX transcription",
			Optional:    engine != config.EngineWhisperX,
			Install:     whisperx.InstallHints,
		},
	)
	return reqs
}

// CheckBinaries looks up each requirement on PATH.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, len(requirements))
	for i, req := range requirements {
		req.Command = strings.TrimSpace(req.Command)
		results[i] = check(req)
	}
	return results
}

func check(req Requirement) Status {
	status := Status{Requirement: req}
	if req.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	resolved, err := exec.LookPath(req.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", req.Command)
		return status
	}
	status.Available = true
	if resolved != req.Command {
		status.Detail = resolved
	}
	return status
}

// MissingRequired returns the unavailable, non-optional entries.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			missing = append(missing, s)
		}
	}
	return missing
}
