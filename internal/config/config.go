package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"drivesync/internal/job"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains state and log directories.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Monitor controls the drive polling loop.
type Monitor struct {
	PollIntervalMS   int  `toml:"poll_interval_ms"`
	MaxQueryFailures int  `toml:"max_query_failures"`
	NetlinkWakeup    bool `toml:"netlink_wakeup"`
}

// Sources names the shared root and the per-subject folders beneath it.
// Folders maps a subject key (see job.Subject.Key) to a folder name relative
// to Root, or to an absolute path.
type Sources struct {
	Root    string            `toml:"root"`
	Folders map[string]string `toml:"folders"`
}

// Tool configures the external copy tool.
type Tool struct {
	Binary         string `toml:"binary"`
	BufferSizeMB   int    `toml:"buffer_size_mb"`
	Concurrency    int    `toml:"concurrency"`
	AbortOnFailure bool   `toml:"abort_on_failure"`
}

// Launcher configures the interactive selection role.
type Launcher struct {
	AutoStart            bool     `toml:"auto_start"`
	PromptTimeoutSeconds int      `toml:"prompt_timeout_seconds"`
	DefaultRecentDays    int      `toml:"default_recent_days"`
	Terminal             []string `toml:"terminal"`
}

// Notifications configures completion notices.
type Notifications struct {
	OnCompletion   bool   `toml:"on_completion"`
	Desktop        bool   `toml:"desktop"`
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Icon           string `toml:"icon"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// Config encapsulates all configuration values for drivesync.
//
// Configuration sections by subsystem:
//   - Paths: lock, pid, history and log locations
//   - Monitor: polling cadence and failure tolerance
//   - Sources: shared source root and subject folders
//   - Tool: FastCopy binary and tuning hints
//   - Launcher: selection prompt and auto-start
//   - Notifications: completion notices
//   - Logging: log format, level and rotation
type Config struct {
	Paths         Paths         `toml:"paths"`
	Monitor       Monitor       `toml:"monitor"`
	Sources       Sources       `toml:"sources"`
	Tool          Tool          `toml:"tool"`
	Launcher      Launcher      `toml:"launcher"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// EnvConfigPath names the environment variable that overrides the config
// search.
const EnvConfigPath = "DRIVESYNC_CONFIG"

// DefaultConfigPath returns the per-user config location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load reads the first config found and returns it with defaults applied,
// paths expanded and values validated, together with the path consulted and
// whether a file existed there. Without an explicit path the search order is
// $DRIVESYNC_CONFIG, drivesync.toml next to the executable, the per-user
// file, then drivesync.toml in the working directory.
func Load(path string) (*Config, string, bool, error) {
	resolved, exists, err := locate(path)
	if err != nil {
		return nil, "", false, err
	}

	cfg := Default()
	if exists {
		if err := decodeFile(resolved, &cfg); err != nil {
			return nil, resolved, true, err
		}
	}
	if err := cfg.normalize(); err != nil {
		return nil, resolved, exists, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, resolved, exists, err
	}
	return &cfg, resolved, exists, nil
}

func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// locate resolves the config path. An explicit or environment path is
// returned even when missing so the caller can report where it looked.
func locate(explicit string) (string, bool, error) {
	if explicit == "" {
		explicit = strings.TrimSpace(os.Getenv(EnvConfigPath))
	}
	if explicit != "" {
		expanded, err := expandPath(explicit)
		if err != nil {
			return "", false, err
		}
		exists, err := isFile(expanded)
		return expanded, exists, err
	}

	userPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	var candidates []string
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), projectConfigName))
	}
	candidates = append(candidates, userPath)
	if local, err := filepath.Abs(projectConfigName); err == nil {
		candidates = append(candidates, local)
	}
	for _, candidate := range candidates {
		if ok, _ := isFile(candidate); ok {
			return candidate, true, nil
		}
	}
	return userPath, false, nil
}

func isFile(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("stat config: %w", err)
	case info.IsDir():
		return false, fmt.Errorf("config path %s is a directory", path)
	default:
		return true, nil
	}
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SourceFolder resolves the source directory for a subject.
func (c *Config) SourceFolder(s job.Subject) string {
	name := strings.TrimSpace(c.Sources.Folders[s.Key()])
	if name == "" {
		name = s.Label()
	}
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(c.Sources.Root, name)
}

// HistoryPath is the location of the run history database.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// expandPath resolves environment references, a leading "~" and relative
// segments into an absolute, cleaned path. Empty stays empty.
func expandPath(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	value = os.ExpandEnv(value)
	if value == "~" || strings.HasPrefix(value, "~/") || strings.HasPrefix(value, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		value = filepath.Join(home, value[1:])
	}
	absolute, err := filepath.Abs(value)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", value, err)
	}
	return absolute, nil
}

// ExpandPath applies the same expansion Load uses for path settings.
func ExpandPath(value string) (string, error) {
	return expandPath(value)
}

// Sample returns the embedded sample configuration.
func Sample() string {
	return sampleConfig
}
