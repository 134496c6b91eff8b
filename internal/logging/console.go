package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// consoleFieldLimit caps the key=value pairs printed on an INFO or higher
// line. Debug lines print everything.
const consoleFieldLimit = 6

const (
	colorReset  = "\x1b[0m"
	colorGray   = "\x1b[90m"
	colorRed    = "\x1b[31m"
	colorYellow = "\x1b[33m"
	colorGreen  = "\x1b[32m"
)

// consoleHandler prints one line per record, sized for the small terminal
// window the launcher and worker run in:
//
//	14:03:07 WARN  worker E: [sync-worker] subject sync reported failure subject=physics
type consoleHandler struct {
	mu        *sync.Mutex
	w         io.Writer
	level     slog.Leveler
	addSource bool
	color     bool
	prefix    string
	fields    []field
	role      string
	drive     string
	component string
}

type field struct {
	key   string
	value slog.Value
}

func newConsoleHandler(w io.Writer, level slog.Leveler, addSource, color bool) *consoleHandler {
	return &consoleHandler{mu: &sync.Mutex{}, w: w, level: level, addSource: addSource, color: color}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	line := *h
	line.fields = append([]field(nil), h.fields...)
	record.Attrs(func(attr slog.Attr) bool {
		line.add(attr)
		return true
	})

	var buf bytes.Buffer
	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	h.paint(&buf, colorGray, ts.Local().Format(time.TimeOnly))
	buf.WriteByte(' ')
	h.paint(&buf, levelColor(record.Level), fmt.Sprintf("%-5s", levelName(record.Level)))
	for _, part := range []string{line.role, line.drive} {
		if part != "" {
			buf.WriteByte(' ')
			buf.WriteString(part)
		}
	}
	if line.component != "" {
		buf.WriteString(" [")
		buf.WriteString(line.component)
		buf.WriteByte(']')
	}
	buf.WriteByte(' ')
	buf.WriteString(strings.TrimSpace(record.Message))

	shown := line.fields
	if record.Level >= slog.LevelInfo && len(shown) > consoleFieldLimit {
		shown = shown[:consoleFieldLimit]
	}
	for _, f := range shown {
		buf.WriteByte(' ')
		buf.WriteString(f.key)
		buf.WriteByte('=')
		buf.WriteString(quoteIfNeeded(renderValue(f.value)))
	}
	if hidden := len(line.fields) - len(shown); hidden > 0 {
		fmt.Fprintf(&buf, " (+%d)", hidden)
	}
	if h.addSource && record.PC != 0 {
		if src := record.Source(); src != nil {
			h.paint(&buf, colorGray, fmt.Sprintf(" %s:%d", filepath.Base(src.File), src.Line))
		}
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.fields = append([]field(nil), h.fields...)
	for _, attr := range attrs {
		next.add(attr)
	}
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

// add lifts role, drive and component into the line header and keeps the
// last value of a repeated key.
func (h *consoleHandler) add(attr slog.Attr) {
	value := attr.Value.Resolve()
	if value.Kind() == slog.KindGroup {
		if attr.Key == "" {
			for _, member := range value.Group() {
				h.add(member)
			}
			return
		}
		group := *h
		group.prefix = h.prefix + attr.Key + "."
		for _, member := range value.Group() {
			group.add(member)
		}
		h.fields = group.fields
		return
	}
	if attr.Key == "" {
		return
	}
	if h.prefix == "" {
		switch attr.Key {
		case FieldRole:
			h.role = value.String()
			return
		case FieldDrive:
			h.drive = value.String()
			return
		case FieldComponent:
			h.component = value.String()
			return
		}
	}
	key := h.prefix + attr.Key
	for i := range h.fields {
		if h.fields[i].key == key {
			h.fields[i].value = value
			return
		}
	}
	h.fields = append(h.fields, field{key: key, value: value})
}

func (h *consoleHandler) paint(buf *bytes.Buffer, color, text string) {
	if h.color {
		buf.WriteString(color)
		buf.WriteString(text)
		buf.WriteString(colorReset)
		return
	}
	buf.WriteString(text)
}

func renderValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().Local().Format(time.DateTime)
	case slog.KindDuration:
		return v.Duration().Round(time.Millisecond).String()
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindAny:
		switch x := v.Any().(type) {
		case error:
			return x.Error()
		case []string:
			return strings.Join(x, ",")
		default:
			return fmt.Sprint(x)
		}
	default:
		return v.String()
	}
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

func levelName(level slog.Level) string {
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

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return colorRed
	case level >= slog.LevelWarn:
		return colorYellow
	case level >= slog.LevelInfo:
		return colorGreen
	default:
		return colorGray
	}
}
