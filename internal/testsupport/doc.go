// Package testsupport builds throwaway configurations, stub tool binaries,
// and ledgers for tests. Stubs are POSIX shell scripts; callers on Windows
// should skip.
package testsupport
