package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"drivesync/internal/config"
	"drivesync/internal/logging"
)

func TestNewFromConfigWritesRoleLog(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.Format = "json"

	logger, closer, err := logging.NewFromConfig(&cfg, "worker", io.Discard)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("sync started", logging.String(logging.FieldDrive, "E:"))
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "worker.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &entry); err != nil {
		t.Fatalf("decode json log %q: %v", data, err)
	}
	if entry["msg"] != "sync started" || entry["role"] != "worker" || entry["drive"] != "E:" {
		t.Fatalf("unexpected entry %v", entry)
	}
	if entry["level"] != "info" {
		t.Fatalf("expected lower-case level, got %v", entry["level"])
	}
}

func TestConsoleLoggerOmitsSourceForInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := logging.New(logging.Options{Level: "info", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message without caller")
	if strings.Contains(buf.String(), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", buf.String())
	}
}

func TestConsoleLoggerIncludesSourceForDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := logging.New(logging.Options{Level: "debug", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message with caller")
	if !strings.Contains(buf.String(), "logger_test.go:") {
		t.Fatalf("expected caller information in debug mode, got %q", buf.String())
	}
}

func TestConsoleHeaderCarriesComponentAndDrive(t *testing.T) {
	var buf bytes.Buffer
	base, _, err := logging.New(logging.Options{Level: "info", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := logging.WithDrive(logging.WithRole(context.Background(), "launcher"), "E:")
	logger := logging.WithContext(ctx, logging.NewComponentLogger(base, "drive-monitor"))
	logger.Info("volume inserted", logging.String("label", "STICK"))

	out := buf.String()
	for _, want := range []string{"INFO ", " launcher E: [drive-monitor] volume inserted", "label=STICK"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
	if strings.Contains(out, "component=") || strings.Count(out, "\n") != 1 {
		t.Fatalf("expected a single line with the component in the header: %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no colour codes for a non-terminal writer: %q", out)
	}
}

func TestConsoleLimitsInfoFields(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := logging.New(logging.Options{Level: "info", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("many", "a", 1, "b", 2, "c", 3, "d", 4, "e", 5, "f", 6, "g", 7, "h", "two words")
	out := buf.String()
	if !strings.Contains(out, "f=6 (+2)") || strings.Contains(out, "g=7") {
		t.Fatalf("expected two hidden fields: %q", out)
	}

	buf.Reset()
	logger.Info("quoted", "path", "My Drive", "empty", "")
	if !strings.Contains(buf.String(), `path="My Drive" empty=""`) {
		t.Fatalf("expected quoting: %q", buf.String())
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, _, err := logging.New(logging.Options{Format: "xml", Console: io.Discard}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := logging.New(logging.Options{Format: "json", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "tool exited non-zero", "tool_failed", logging.String(logging.FieldImpact, "subject skipped"))

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry[logging.FieldEventType] != "tool_failed" {
		t.Fatalf("missing event type: %v", entry)
	}
	if entry[logging.FieldErrorHint] == nil {
		t.Fatalf("missing default hint: %v", entry)
	}
	if entry[logging.FieldImpact] != "subject skipped" {
		t.Fatalf("explicit impact overwritten: %v", entry)
	}
}

func TestNopLoggerIsSilent(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 12) {
		t.Fatal("nop logger should not be enabled")
	}
}
