package preflight

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"chunkscribe/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

type checkerFunc func(ctx context.Context) error

func (f checkerFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

func TestCheckEndpoint(t *testing.T) {
	ok := CheckEndpoint(context.Background(), "api", checkerFunc(func(context.Context) error { return nil }))
	if !ok.Passed {
		t.Fatalf("expected pass, got %s", ok.Detail)
	}
	slow := CheckEndpoint(context.Background(), "api", checkerFunc(func(context.Context) error { return context.DeadlineExceeded }))
	if slow.Passed || slow.Detail != "health check timed out (API unresponsive)" {
		t.Fatalf("unexpected timeout result: %+v", slow)
	}
	bad := CheckEndpoint(context.Background(), "api", checkerFunc(func(context.Context) error { return errors.New("denied") }))
	if bad.Passed || bad.Detail != "denied" {
		t.Fatalf("unexpected error result: %+v", bad)
	}
}

func TestCheckOpenAI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good-key" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":{"message":"bad key"}}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"object":"list","data":[]}`)
	}))
	defer srv.Close()

	cfg := config.Transcribe{OpenAIAPIKey: "good-key", OpenAIBaseURL: srv.URL + "/v1"}
	if result := CheckOpenAI(context.Background(), cfg); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	cfg.OpenAIAPIKey = "bad-key"
	if result := CheckOpenAI(context.Background(), cfg); result.Passed {
		t.Fatal("expected failure for bad key")
	}
	cfg.OpenAIAPIKey = ""
	if result := CheckOpenAI(context.Background(), cfg); result.Passed || result.Detail != "API key missing" {
		t.Fatalf("unexpected missing key result: %+v", result)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatalf("expected nil results, got %v", results)
	}
}

func TestRunAll_MinimalConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StateDir = t.TempDir()
	results := RunAll(context.Background(), &cfg)
	if len(results) != 1 || results[0].Name != "State directory" || !results[0].Passed {
		t.Fatalf("unexpected results: %+v", results)
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}
}

func TestRunAll_IncludesOpenAIWhenSelected(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StateDir = t.TempDir()
	cfg.Transcribe.Engine = config.EngineOpenAI
	results := RunAll(context.Background(), &cfg)
	if len(results) != 2 || results[1].Name != "OpenAI API" {
		t.Fatalf("unexpected results: %+v", results)
	}
	if failed := Failed(results); len(failed) != 1 {
		t.Fatalf("expected missing key to fail, got %+v", failed)
	}
}
