package transcriber

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"chunkscribe/internal/services"
)

// ErrNoInputs reports a directory without any supported audio files.
var ErrNoInputs = errors.New("no audio files found")

// AudioExtensions lists the extensions picked up from a directory.
var AudioExtensions = []string{".mp3", ".wav", ".m4a", ".flac", ".aac"}

// ResolveInputs returns the files to transcribe. A file path is returned as
// is; a directory yields its audio files (extension match ignores case),
// sorted by path.
func ResolveInputs(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, stageName, "resolve inputs", path, err)
		}
		return nil, services.Wrap(services.ErrValidation, stageName, "resolve inputs", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, stageName, "read directory", path, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if slices.Contains(AudioExtensions, strings.ToLower(filepath.Ext(entry.Name()))) {
			files = append(files, filepath.Join(path, entry.Name()))
		}
	}
	if len(files) == 0 {
		return nil, services.Wrap(services.ErrNotFound, stageName, "resolve inputs", "no "+strings.Join(AudioExtensions, "/")+" files in "+path, ErrNoInputs)
	}
	sort.Strings(files)
	return files, nil
}

// DefaultOutputDir returns the "transcripts" directory used when none is
// given: inside a directory input, or beside a file input.
func DefaultOutputDir(input string) string {
	if info, err := os.Stat(input); err == nil && info.IsDir() {
		return filepath.Join(input, "transcripts")
	}
	return filepath.Join(filepath.Dir(input), "transcripts")
}
