package pipeline

import (
	"path/filepath"
	"strings"
)

// Layout is where each stage writes for one input.
type Layout struct {
	OutputDir      string `json:"output_dir"`
	Audio          string `json:"audio"`
	ChunksDir      string `json:"chunks_dir"`
	TranscriptsDir string `json:"transcripts_dir"`
}

// NewLayout derives stage outputs from input. An empty outputDir means the
// input's own directory.
func NewLayout(input, outputDir, audioFormat string) Layout {
	if outputDir == "" {
		outputDir = filepath.Dir(input)
	}
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return Layout{
		OutputDir:      outputDir,
		Audio:          filepath.Join(outputDir, stem+"."+strings.TrimPrefix(audioFormat, ".")),
		ChunksDir:      filepath.Join(outputDir, stem+"_chunks"),
		TranscriptsDir: filepath.Join(outputDir, stem+"_transcripts"),
	}
}
