package testsupport

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"drivesync/internal/config"
	"drivesync/internal/job"
)

// ConfigOption adjusts the config built by NewConfig. It may touch the
// filesystem under BaseDir.
type ConfigOption func(t testing.TB, cfg *config.Config)

// NewConfig returns defaults rooted in a fresh temp directory: state, logs
// and the shared source tree live under BaseDir. Desktop and ntfy
// notifications and the netlink wakeup are off so tests stay local.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Sources.Root = filepath.Join(base, "shared")
	cfg.Monitor.NetlinkWakeup = false
	cfg.Notifications.Desktop = false
	cfg.Notifications.NtfyTopic = ""

	for _, opt := range opts {
		opt(t, &cfg)
	}
	return &cfg
}

// BaseDir returns the temp directory behind a config from NewConfig.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}

// WithSourceFolders creates the source folder of each subject, or of every
// subject when none are given.
func WithSourceFolders(subjects ...job.Subject) ConfigOption {
	return func(t testing.TB, cfg *config.Config) {
		if len(subjects) == 0 {
			subjects = job.AllSubjects()
		}
		for _, s := range subjects {
			if err := os.MkdirAll(cfg.SourceFolder(s), 0o755); err != nil {
				t.Fatalf("create source folder for %s: %v", s.Key(), err)
			}
		}
	}
}

// WithToolScript makes tool.binary a /bin/sh script whose body is script.
// The script sees the FastCopy arguments as "$@". Skipped on Windows.
func WithToolScript(script string) ConfigOption {
	return func(t testing.TB, cfg *config.Config) {
		if runtime.GOOS == "windows" {
			t.Skip("tool scripts need /bin/sh")
		}
		path := filepath.Join(BaseDir(cfg), "bin", "fcp")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("create bin dir: %v", err)
		}
		if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
			t.Fatalf("write tool script: %v", err)
		}
		cfg.Tool.Binary = path
	}
}
