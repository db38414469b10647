package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// infoAttrLimit caps fields on info lines; debug and warn+ show everything.
const infoAttrLimit = 6

// infoHighlightKeys are printed first, before the remaining fields.
var infoHighlightKeys = []string{
	FieldEventType,
	"error",
	FieldErrorHint,
	FieldImpact,
	"input",
	"output",
	"succeeded",
	"total",
}

type prettyHandler struct {
	mu        *sync.Mutex
	writer    io.Writer
	level     *slog.LevelVar
	attrs     []slog.Attr
	groups    []string
	addSource bool
}

func newPrettyHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &prettyHandler{mu: new(sync.Mutex), writer: w, level: lvl, addSource: addSource}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, record slog.Record) error {
	if record.Level < h.level.Level() {
		return nil
	}

	timestamp := record.Time
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	var component, runID, stage, item string
	all := h.collect(record)
	filtered := all[:0]
	for _, field := range all {
		switch field.key {
		case FieldComponent:
			component = attrString(field.value)
		case FieldRunID:
			runID = attrString(field.value)
		case FieldStage:
			stage = attrString(field.value)
		case FieldItem:
			item = attrString(field.value)
		default:
			filtered = append(filtered, field)
		}
	}

	message := strings.TrimSpace(record.Message)
	if message == "" {
		message = "(no message)"
	}

	var buf bytes.Buffer
	buf.Grow(160 + len(filtered)*24)
	writeLogHeader(&buf, timestamp, record.Level, component, FormatSubject(runID, stage, item), message)

	// One line per record so grep and `chunkscribe logs --run` keep fields.
	limit := infoAttrLimit
	if record.Level < slog.LevelInfo || record.Level >= slog.LevelWarn {
		limit = 0
	}
	fields, hidden := selectFields(filtered, limit)
	for _, field := range fields {
		buf.WriteString("  ")
		buf.WriteString(field.key)
		buf.WriteByte('=')
		buf.WriteString(formatValue(field.value))
	}
	if hidden > 0 {
		buf.WriteString("  (+")
		buf.WriteString(strconv.Itoa(hidden))
		buf.WriteString(" more)")
	}
	if src := record.Source(); h.addSource && src != nil && src.File != "" {
		buf.WriteString("  @")
		buf.WriteString(filepath.Base(src.File))
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(src.Line))
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

func writeLogHeader(buf *bytes.Buffer, ts time.Time, level slog.Level, component, subject, message string) {
	buf.WriteString(formatTimestamp(ts))
	buf.WriteByte(' ')
	buf.WriteString(levelLabel(level))
	if component != "" {
		buf.WriteString(" [")
		buf.WriteString(component)
		buf.WriteByte(']')
	}
	if subject != "" {
		buf.WriteByte(' ')
		buf.WriteString(subject)
	}
	buf.WriteString(" – ")
	buf.WriteString(message)
}

// FormatSubject builds the run/stage/item subject string used in console output.
func FormatSubject(runID, stage, item string) string {
	runID = strings.TrimSpace(runID)
	stage = strings.TrimSpace(stage)
	item = strings.TrimSpace(item)
	parts := make([]string, 0, 3)
	if runID != "" {
		if len(runID) > 8 {
			runID = runID[:8]
		}
		parts = append(parts, "Run "+runID)
	}
	if stage != "" {
		parts = append(parts, stage)
	}
	if item != "" {
		parts = append(parts, item)
	}
	return strings.Join(parts, " · ")
}

// selectFields orders highlight keys first. limit=0 means no limit.
func selectFields(attrs []kv, limit int) ([]kv, int) {
	if len(attrs) == 0 {
		return nil, 0
	}
	used := make([]bool, len(attrs))
	ordered := make([]kv, 0, len(attrs))
	for _, key := range infoHighlightKeys {
		for i, attr := range attrs {
			if !used[i] && attr.key == key {
				used[i] = true
				ordered = append(ordered, attr)
			}
		}
	}
	for i, attr := range attrs {
		if !used[i] {
			ordered = append(ordered, attr)
		}
	}
	if limit <= 0 || len(ordered) <= limit {
		return ordered, 0
	}
	return ordered[:limit], len(ordered) - limit
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	if prefix := strings.Join(h.groups, "."); prefix != "" {
		attrs = []slog.Attr{{Key: prefix, Value: slog.GroupValue(attrs...)}}
	}
	clone.attrs = append(slices.Clone(h.attrs), attrs...)
	return &clone
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.groups = append(slices.Clone(h.groups), name)
	return &clone
}

type kv struct {
	key   string
	value slog.Value
}

// collect flattens groups into dotted keys; h.attrs already carry the group
// prefix that was open when they were added. Later duplicates overwrite the
// earlier value but keep its position.
func (h *prettyHandler) collect(record slog.Record) []kv {
	out := make([]kv, 0, record.NumAttrs()+len(h.attrs))
	index := make(map[string]int)
	var add func(prefix string, attr slog.Attr)
	add = func(prefix string, attr slog.Attr) {
		if attr.Equal(slog.Attr{}) {
			return
		}
		value := attr.Value.Resolve()
		key := joinKey(prefix, attr.Key)
		if value.Kind() == slog.KindGroup {
			for _, member := range value.Group() {
				add(key, member)
			}
			return
		}
		if key == "" {
			return
		}
		if i, ok := index[key]; ok {
			out[i].value = value
			return
		}
		index[key] = len(out)
		out = append(out, kv{key: key, value: value})
	}
	for _, attr := range h.attrs {
		add("", attr)
	}
	prefix := strings.Join(h.groups, ".")
	record.Attrs(func(attr slog.Attr) bool {
		add(prefix, attr)
		return true
	})
	return out
}

func joinKey(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	default:
		return prefix + "." + key
	}
}

// levelLabel pads to five columns so messages line up.
func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN "
	case level >= slog.LevelInfo:
		return "INFO "
	default:
		return "DEBUG"
	}
}
