// Package confirm asks the user to approve destructive actions such as
// overwriting an existing output file.
package confirm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Provider answers yes/no questions.
type Provider interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// Static always returns the same answer. Static(true) backs --yes/--force.
type Static bool

// Confirm implements Provider.
func (s Static) Confirm(context.Context, string) (bool, error) {
	return bool(s), nil
}

// Terminal prompts on an interactive terminal. When the input is not a
// terminal it answers no without prompting.
type Terminal struct {
	in          io.Reader
	out         io.Writer
	interactive bool
}

// NewTerminal builds a Terminal reading from in and prompting on out.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: in, out: out, interactive: isTerminal(in)}
}

func isTerminal(r io.Reader) bool {
	file, ok := r.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Confirm implements Provider. Only "y" and "yes" (any case) count as yes.
func (t *Terminal) Confirm(ctx context.Context, question string) (bool, error) {
	if !t.interactive {
		return false, nil
	}
	return prompt(ctx, t.in, t.out, question)
}

func prompt(ctx context.Context, in io.Reader, out io.Writer, question string) (bool, error) {
	if _, err := fmt.Fprintf(out, "%s [y/N]: ", question); err != nil {
		return false, fmt.Errorf("write prompt: %w", err)
	}
	if ctx.Done() == nil {
		return parseAnswer(readAnswer(in))
	}

	// The reader goroutine cannot be interrupted; after cancellation it stays
	// blocked on stdin until the process exits.
	type answer struct {
		line string
		err  error
	}
	answers := make(chan answer, 1)
	go func() {
		line, err := readAnswer(in)
		answers <- answer{line, err}
	}()
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case a := <-answers:
		return parseAnswer(a.line, a.err)
	}
}

func readAnswer(in io.Reader) (string, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	return line, err
}

// parseAnswer treats EOF as "no".
func parseAnswer(line string, err error) (bool, error) {
	if err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
