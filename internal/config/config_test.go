package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"drivesync/internal/config"
	"drivesync/internal/job"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("USERPROFILE", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "state", "drivesync")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Sources.Root != filepath.Join(tempHome, "shared") {
		t.Fatalf("unexpected source root: %q", cfg.Sources.Root)
	}
	if cfg.Monitor.PollIntervalMS != 1000 || cfg.Monitor.MaxQueryFailures != 3 {
		t.Fatalf("unexpected monitor defaults: %+v", cfg.Monitor)
	}
	if cfg.Tool.AbortOnFailure {
		t.Fatal("expected abort_on_failure disabled by default")
	}
	if !cfg.Notifications.OnCompletion {
		t.Fatal("expected completion notifications enabled by default")
	}
}

func TestSampleConfigLoads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(config.Sample()), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution %q exists=%v", resolved, exists)
	}
	if cfg.Tool.Binary != "fcp.exe" {
		t.Fatalf("unexpected tool binary %q", cfg.Tool.Binary)
	}
}

func TestLoadOverridesAndSourceFolders(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "share")
	abs := filepath.Join(dir, "elsewhere", "materials")
	payload := map[string]any{
		"paths":   map[string]any{"state_dir": filepath.Join(dir, "state"), "log_dir": filepath.Join(dir, "logs")},
		"monitor": map[string]any{"poll_interval_ms": 250, "max_query_failures": 1},
		"sources": map[string]any{
			"root": root,
			"folders": map[string]any{
				"Math":      "数学",
				"materials": abs,
			},
		},
		"tool": map[string]any{"binary": " /opt/fastcopy/fcp ", "abort_on_failure": true},
	}
	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Monitor.PollIntervalMS != 250 || cfg.Monitor.MaxQueryFailures != 1 {
		t.Fatalf("monitor overrides not applied: %+v", cfg.Monitor)
	}
	if cfg.Tool.Binary != "/opt/fastcopy/fcp" || !cfg.Tool.AbortOnFailure {
		t.Fatalf("tool overrides not applied: %+v", cfg.Tool)
	}
	if got := cfg.SourceFolder(job.Math); got != filepath.Join(root, "数学") {
		t.Fatalf("unexpected math folder %q", got)
	}
	if got := cfg.SourceFolder(job.Materials); got != abs {
		t.Fatalf("unexpected materials folder %q", got)
	}
	if got := cfg.SourceFolder(job.Physics); got != filepath.Join(root, "Physics") {
		t.Fatalf("unexpected default physics folder %q", got)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[monitor]\npoll_interval = 5\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(c *config.Config){
		"poll interval":   func(c *config.Config) { c.Monitor.PollIntervalMS = 0 },
		"failures":        func(c *config.Config) { c.Monitor.MaxQueryFailures = 0 },
		"subject key":     func(c *config.Config) { c.Sources.Folders = map[string]string{"music": "x"} },
		"buffer":          func(c *config.Config) { c.Tool.BufferSizeMB = -1 },
		"recent days":     func(c *config.Config) { c.Launcher.DefaultRecentDays = 0 },
		"ntfy topic":      func(c *config.Config) { c.Notifications.NtfyTopic = "just-a-topic" },
		"log format":      func(c *config.Config) { c.Logging.Format = "xml" },
		"log level":       func(c *config.Config) { c.Logging.Level = "trace" },
		"request timeout": func(c *config.Config) { c.Notifications.RequestTimeout = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Sources.Root = "/srv/share"
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestGetDottedKeys(t *testing.T) {
	cfg := config.Default()
	cfg.Sources.Root = "/srv/share"
	cfg.Sources.Folders = map[string]string{"english": "Eng"}
	cfg.Launcher.Terminal = []string{"x-terminal-emulator", "-e"}

	cases := map[string]string{
		"monitor.poll_interval_ms":    "1000",
		"tool.buffer_size_mb":         "256",
		"tool.concurrency":            "2",
		"launcher.auto_start":         "false",
		"notifications.on_completion": "true",
		"launcher.terminal":           "x-terminal-emulator -e",
		"sources.folders.english":     filepath.Join("/srv/share", "Eng"),
		"sources.folders.chemistry":   filepath.Join("/srv/share", "Chemistry"),
	}
	for key, want := range cases {
		got, err := cfg.Get(key)
		if err != nil {
			t.Fatalf("Get(%q): %v", key, err)
		}
		if got != want {
			t.Fatalf("Get(%q) = %q, want %q", key, got, want)
		}
	}

	for _, bad := range []string{"", "monitor", "monitor.nope", "tool.binary.extra"} {
		if _, err := cfg.Get(bad); err == nil {
			t.Fatalf("expected error for key %q", bad)
		}
	}
}

func TestKeysListsScalars(t *testing.T) {
	cfg := config.Default()
	keys, err := cfg.Keys()
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	joined := strings.Join(keys, "\n")
	for _, want := range []string{"monitor.poll_interval_ms", "tool.binary", "logging.level"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in keys:\n%s", want, joined)
		}
	}
	for _, key := range keys {
		if key == "monitor" {
			t.Fatal("tables must not be listed as keys")
		}
	}
}

func TestLoadHonoursEnvironmentPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "school.toml")
	if err := os.WriteFile(path, []byte("[tool]\nconcurrency = 4\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("HOME", dir)
	t.Setenv("USERPROFILE", dir)
	t.Setenv(config.EnvConfigPath, path)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if resolved != path || !exists || cfg.Tool.Concurrency != 4 {
		t.Fatalf("expected env config to win, got %q exists=%v concurrency=%d", resolved, exists, cfg.Tool.Concurrency)
	}

	missing := filepath.Join(dir, "absent.toml")
	t.Setenv(config.EnvConfigPath, missing)
	_, resolved, exists, err = config.Load("")
	if err != nil || exists || resolved != missing {
		t.Fatalf("expected missing env path to be reported, got %q exists=%v err=%v", resolved, exists, err)
	}
}

func TestExpandPathEnvironmentAndHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("DRIVESYNC_TEST_ROOT", filepath.Join(home, "share"))

	got, err := config.ExpandPath("$DRIVESYNC_TEST_ROOT/Math")
	if err != nil || got != filepath.Join(home, "share", "Math") {
		t.Fatalf("env expansion: got %q err=%v", got, err)
	}
	got, err = config.ExpandPath("~/notes")
	if err != nil || got != filepath.Join(home, "notes") {
		t.Fatalf("home expansion: got %q err=%v", got, err)
	}
	if got, _ := config.ExpandPath("  "); got != "" {
		t.Fatalf("blank should stay blank, got %q", got)
	}
}
