package deps

import (
	"os"
	"path/filepath"
	"testing"

	"chunkscribe/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary", Install: []string{"apt-get install nothing"}},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for absolute command: %s", results[0].Detail)
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" || len(results[1].Install) != 1 {
		t.Fatalf("unexpected status: %#v", results[1])
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("unexpected blank status: %#v", results[2])
	}
}

func TestRequirementsFollowEngine(t *testing.T) {
	cfg := config.Default()
	cfg.Transcribe.Engine = config.EngineWhisperX

	byName := map[string]Requirement{}
	for _, req := range Requirements(&cfg) {
		byName[req.Name] = req
	}
	for _, name := range []string{"FFmpeg", "FFprobe", "uvx"} {
		req, ok := byName[name]
		if !ok || req.Optional {
			t.Fatalf("expected %s to be required, got %#v", name, req)
		}
	}
	if !byName["whisper"].Optional {
		t.Fatal("whisper should be optional when whisperx is selected")
	}
}

func TestMissingRequired(t *testing.T) {
	statuses := []Status{
		{Requirement: Requirement{Name: "a"}, Available: true},
		{Requirement: Requirement{Name: "b", Optional: true}},
		{Requirement: Requirement{Name: "c"}},
	}
	missing := MissingRequired(statuses)
	if len(missing) != 1 || missing[0].Name != "c" {
		t.Fatalf("unexpected missing list: %#v", missing)
	}
}
