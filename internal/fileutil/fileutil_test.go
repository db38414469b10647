package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLockDirExclusive(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	first, err := LockDir(dir)
	if err != nil {
		t.Fatalf("LockDir: %v", err)
	}
	if _, err := os.Stat(first.Path()); err != nil {
		t.Fatalf("expected lock file: %v", err)
	}

	if _, err := LockDir(dir); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked for second lock, got %v", err)
	}

	if err := first.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if _, err := os.Stat(first.Path()); !os.IsNotExist(err) {
		t.Fatalf("expected lock file removed, stat err=%v", err)
	}

	again, err := LockDir(dir)
	if err != nil {
		t.Fatalf("relock after unlock: %v", err)
	}
	if err := again.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
}

func TestUnlockNilIsNoop(t *testing.T) {
	var lock *DirLock
	if err := lock.Unlock(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestFingerprint(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.mp4")
	b := filepath.Join(dir, "b.mp4")
	if err := os.WriteFile(a, []byte("same bytes"), 0o644); err != nil {
		t.Fatalf("write a: %v", err)
	}
	if err := os.WriteFile(b, []byte("same bytes"), 0o644); err != nil {
		t.Fatalf("write b: %v", err)
	}

	fa, err := Fingerprint(a)
	if err != nil {
		t.Fatalf("Fingerprint a: %v", err)
	}
	fb, err := Fingerprint(b)
	if err != nil {
		t.Fatalf("Fingerprint b: %v", err)
	}
	if fa != fb || len(fa) != 64 {
		t.Fatalf("expected identical 64-char digests, got %q and %q", fa, fb)
	}

	if err := os.WriteFile(b, []byte("other bytes"), 0o644); err != nil {
		t.Fatalf("rewrite b: %v", err)
	}
	if fb2, _ := Fingerprint(b); fb2 == fa {
		t.Fatal("expected digest to change with content")
	}
}

func TestFingerprintMissingFile(t *testing.T) {
	if _, err := Fingerprint(filepath.Join(t.TempDir(), "missing")); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
