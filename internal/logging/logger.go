package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"

	"drivesync/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// Console receives human output; nil means stderr. Use io.Discard to
	// silence the terminal and keep only the file.
	Console io.Writer
	// FilePath enables a size-rotated log file when set.
	FilePath    string
	MaxSizeMB   int
	MaxBackups  int
	Development bool
}

// New constructs a slog logger using the provided options. The returned
// closer releases the log file; it is safe to call when no file is used.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	level := parseLevel(opts.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)
	addSource := opts.Development || level <= slog.LevelDebug

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}
	if format != "console" && format != "json" {
		return nil, nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	handlers := make([]slog.Handler, 0, 2)
	if console != io.Discard {
		handlers = append(handlers, newHandler(format, console, levelVar, addSource, IsTerminal(console)))
	}

	var closer io.Closer = nopCloser{}
	if path := strings.TrimSpace(opts.FilePath); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("ensure log directory: %w", err)
		}
		file := NewRotatingFile(path, opts.MaxSizeMB, opts.MaxBackups)
		handlers = append(handlers, newHandler(format, file, levelVar, addSource, false))
		closer = file
	}

	return slog.New(combine(handlers...)), closer, nil
}

// NewFromConfig builds the logger for one role: console output plus
// <log_dir>/<role>.log. console follows Options.Console.
func NewFromConfig(cfg *config.Config, role string, console io.Writer) (*slog.Logger, io.Closer, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console", Console: console})
	}
	opts := Options{
		Console:    console,
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	}
	if dir := strings.TrimSpace(cfg.Paths.LogDir); dir != "" && strings.TrimSpace(role) != "" {
		opts.FilePath = filepath.Join(dir, role+".log")
	}
	logger, closer, err := New(opts)
	if err != nil {
		return nil, nil, err
	}
	return logger.With(String(FieldRole, role)), closer, nil
}

// NewRotatingFile returns a lumberjack writer that rotates at maxSizeMB and
// keeps maxBackups compressed copies.
func NewRotatingFile(path string, maxSizeMB, maxBackups int) *lumberjack.Logger {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	if maxBackups < 0 {
		maxBackups = 0
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		Compress:   true,
	}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w any) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func newHandler(format string, w io.Writer, level slog.Leveler, addSource, color bool) slog.Handler {
	if format == "json" {
		return newJSONHandler(w, level, addSource)
	}
	return newConsoleHandler(w, level, addSource, color)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
