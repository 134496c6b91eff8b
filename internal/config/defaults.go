package config

const (
	defaultConfigPath           = "~/.config/drivesync/config.toml"
	projectConfigName           = "drivesync.toml"
	defaultStateDir             = "~/.local/state/drivesync"
	defaultLogDir               = "~/.local/state/drivesync/logs"
	defaultSourceRoot           = "~/shared"
	defaultPollIntervalMS       = 1000
	defaultMaxQueryFailures     = 3
	defaultToolBinary           = "fcp.exe"
	defaultBufferSizeMB         = 256
	defaultConcurrency          = 2
	defaultPromptTimeoutSeconds = 10
	defaultRecentDays           = 7
	defaultRequestTimeout       = 10
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogMaxSizeMB         = 10
	defaultLogMaxBackups        = 3
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Monitor: Monitor{
			PollIntervalMS:   defaultPollIntervalMS,
			MaxQueryFailures: defaultMaxQueryFailures,
			NetlinkWakeup:    true,
		},
		Sources: Sources{
			Root:    defaultSourceRoot,
			Folders: map[string]string{},
		},
		Tool: Tool{
			Binary:       defaultToolBinary,
			BufferSizeMB: defaultBufferSizeMB,
			Concurrency:  defaultConcurrency,
		},
		Launcher: Launcher{
			PromptTimeoutSeconds: defaultPromptTimeoutSeconds,
			DefaultRecentDays:    defaultRecentDays,
		},
		Notifications: Notifications{
			OnCompletion:   true,
			Desktop:        true,
			RequestTimeout: defaultRequestTimeout,
		},
		Logging: Logging{
			Level:      defaultLogLevel,
			Format:     defaultLogFormat,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
		},
	}
}
