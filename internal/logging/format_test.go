package logging

import (
	"bytes"
	"go/format"
	"os"
	"testing"
)

func TestLoggerSourceIsGofmtClean(t *testing.T) {
	src, err := os.ReadFile("logger.go")
	if err != nil {
		t.Fatalf("read logger.go: %v", err)
	}
	formatted, err := format.Source(src)
	if err != nil {
		t.Fatalf("format logger.go: %v", err)
	}
	if !bytes.Equal(src, formatted) {
		t.Fatalf("logger.go is not gofmt-formatted:\n%s", formatted)
	}
}
