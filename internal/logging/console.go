package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// consoleOutput is shared by every handler derived from one logger so that
// concurrent records never interleave.
type consoleOutput struct {
	mu sync.Mutex
	w  io.Writer
}

// consoleHandler renders one header line per record followed by an indented
// field list. Info and above show a curated field list, debug shows every
// field verbatim.
type consoleHandler struct {
	out    *consoleOutput
	level  slog.Leveler
	fields []kv // attributes bound with WithAttrs, already flattened
	groups []string
	source bool
}

func newConsoleHandler(w io.Writer, level slog.Leveler, source bool) slog.Handler {
	return &consoleHandler{out: &consoleOutput{w: w}, level: level, source: source}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	if !h.Enabled(context.Background(), record.Level) {
		return nil
	}

	fields := make([]kv, 0, len(h.fields)+record.NumAttrs())
	fields = append(fields, h.fields...)
	record.Attrs(func(attr slog.Attr) bool {
		fields = appendFlattened(fields, h.groups, attr)
		return true
	})
	fields = lastWins(fields)

	head := consoleHeader{
		when:    record.Time,
		level:   record.Level,
		message: strings.TrimSpace(record.Message),
	}
	for _, f := range fields {
		switch f.key {
		case FieldComponent:
			head.component = attrString(f.value)
		case FieldFile:
			head.subject = FormatSubject(attrString(f.value))
		}
	}
	if h.source {
		head.source = record.Source()
	}

	var buf bytes.Buffer
	buf.Grow(192 + 32*len(fields))
	head.writeTo(&buf)
	buf.WriteByte('\n')
	if record.Level < slog.LevelInfo {
		writeAllFields(&buf, fields)
	} else {
		writeCuratedFields(&buf, fields)
	}

	h.out.mu.Lock()
	defer h.out.mu.Unlock()
	_, err := h.out.w.Write(buf.Bytes())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.fields = make([]kv, len(h.fields), len(h.fields)+len(attrs))
	copy(next.fields, h.fields)
	for _, attr := range attrs {
		next.fields = appendFlattened(next.fields, h.groups, attr)
	}
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(append([]string(nil), h.groups...), name)
	return &next
}

type consoleHeader struct {
	when      time.Time
	level     slog.Level
	component string
	subject   string
	message   string
	source    *slog.Source
}

// writeTo renders "2024-05-01 10:00:00 INFO [batch] Film.mkv – message [file.go:12]".
func (c consoleHeader) writeTo(buf *bytes.Buffer) {
	when := c.when
	if when.IsZero() {
		when = time.Now()
	}
	buf.WriteString(formatTimestamp(when))
	buf.WriteByte(' ')
	buf.WriteString(levelLabel(c.level))
	if c.component != "" {
		buf.WriteString(" [" + c.component + "]")
	}
	if c.subject != "" {
		buf.WriteString(" " + c.subject)
	}
	message := c.message
	if message == "" {
		message = "(no message)"
	}
	buf.WriteString(" – " + message)
	if c.source != nil && c.source.File != "" {
		buf.WriteString(" [" + filepath.Base(c.source.File) + ":" + strconv.Itoa(c.source.Line) + "]")
	}
}

func writeCuratedFields(buf *bytes.Buffer, fields []kv) {
	shown, hidden := selectInfoFields(fields)
	for _, f := range shown {
		buf.WriteString("    - " + f.label + ": " + f.value + "\n")
	}
	switch {
	case hidden == 1:
		buf.WriteString("    + 1 more field hidden\n")
	case hidden > 1:
		buf.WriteString("    + " + strconv.Itoa(hidden) + " more fields hidden\n")
	}
}

func writeAllFields(buf *bytes.Buffer, fields []kv) {
	for _, f := range fields {
		if f.key == FieldComponent {
			continue
		}
		buf.WriteString("    " + f.key + ": " + formatValue(f.value) + "\n")
	}
}

// FormatSubject reduces a media path to the base name shown in headers.
func FormatSubject(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}

type kv struct {
	key   string
	value slog.Value
}

// appendFlattened expands groups into dotted keys.
func appendFlattened(dst []kv, groups []string, attr slog.Attr) []kv {
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	value := attr.Value.Resolve()
	if value.Kind() == slog.KindGroup {
		inner := groups
		if attr.Key != "" {
			inner = append(append([]string(nil), groups...), attr.Key)
		}
		for _, child := range value.Group() {
			dst = appendFlattened(dst, inner, child)
		}
		return dst
	}
	key := attr.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".")
		if attr.Key != "" {
			key += "." + attr.Key
		}
	}
	if key == "" {
		return dst
	}
	return append(dst, kv{key: key, value: value})
}

// lastWins drops earlier duplicates of a key, keeping the first position and
// the last value.
func lastWins(fields []kv) []kv {
	if len(fields) < 2 {
		return fields
	}
	index := make(map[string]int, len(fields))
	out := fields[:0:0]
	for _, f := range fields {
		if i, ok := index[f.key]; ok {
			out[i].value = f.value
			continue
		}
		index[f.key] = len(out)
		out = append(out, f)
	}
	return out
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
