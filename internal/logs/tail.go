package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

const pollInterval = 250 * time.Millisecond

// TailOptions controls a single Tail call. A negative Offset reads the last
// Limit lines; otherwise reading starts at Offset bytes. With Follow and a
// positive Wait, Tail polls up to Wait for new lines before returning empty.
type TailOptions struct {
	Offset int64
	Limit  int
	Follow bool
	Wait   time.Duration
	Match  func(line string) bool
}

// TailResult carries the lines read and the offset to resume from.
type TailResult struct {
	Lines  []string
	Offset int64
}

// Tail reads complete lines from path. A missing file yields no lines and
// offset 0; an offset past the end (truncated file) restarts at the end.
func Tail(ctx context.Context, path string, opts TailOptions) (TailResult, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return TailResult{}, nil
	case err != nil:
		return TailResult{Offset: opts.Offset}, fmt.Errorf("stat log file: %w", err)
	case info.IsDir():
		return TailResult{Offset: opts.Offset}, fmt.Errorf("log path %q is a directory", path)
	}
	if opts.Offset < 0 && opts.Limit <= 0 {
		return TailResult{Offset: info.Size()}, nil
	}

	var deadline time.Time
	if opts.Follow && opts.Wait > 0 {
		deadline = time.Now().Add(opts.Wait)
	}
	start := min(max(opts.Offset, 0), info.Size())
	for {
		lines, next, err := collect(path, start, opts)
		if err != nil {
			return TailResult{Offset: start}, err
		}
		if len(lines) > 0 || !time.Now().Before(deadline) {
			return TailResult{Lines: lines, Offset: next}, nil
		}
		start = next
		select {
		case <-ctx.Done():
			return TailResult{Offset: start}, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// Follow emits the last limit lines of path and then every appended line
// until ctx is done. A cancelled context is not an error.
func Follow(ctx context.Context, path string, limit int, match func(string) bool, emit func(string) error) error {
	opts := TailOptions{Offset: -1, Limit: limit, Match: match}
	for {
		result, err := Tail(ctx, path, opts)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		for _, line := range result.Lines {
			if err := emit(line); err != nil {
				return err
			}
		}
		if ctx.Err() != nil {
			return nil
		}
		opts = TailOptions{Offset: result.Offset, Follow: true, Wait: time.Second, Match: match}
	}
}

// collect keeps the last opts.Limit matching lines when tailing from the
// end, or every matching line when reading from an offset.
func collect(path string, start int64, opts TailOptions) ([]string, int64, error) {
	keep := 0
	if opts.Offset < 0 {
		keep = opts.Limit
	}
	var lines []string
	next, err := scanFrom(path, start, func(line string) {
		if opts.Match != nil && !opts.Match(line) {
			return
		}
		lines = append(lines, line)
		if keep > 0 && len(lines) >= 2*keep {
			lines = append(lines[:0], lines[len(lines)-keep:]...)
		}
	})
	if keep > 0 && len(lines) > keep {
		lines = lines[len(lines)-keep:]
	}
	return lines, next, err
}

// scanFrom calls fn for each newline-terminated line after offset and
// returns the offset just past the last one. A trailing partial line is left
// for the next call.
func scanFrom(path string, offset int64, fn func(string)) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return offset, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset, fmt.Errorf("seek log file: %w", err)
	}
	reader := bufio.NewReaderSize(file, 64*1024)
	for {
		line, err := reader.ReadString('\n')
		if errors.Is(err, io.EOF) {
			return offset, nil
		}
		if err != nil {
			return offset, fmt.Errorf("read log file: %w", err)
		}
		offset += int64(len(line))
		fn(line[:len(line)-1])
	}
}
