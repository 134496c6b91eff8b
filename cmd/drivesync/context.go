package main

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"drivesync/internal/config"
	"drivesync/internal/failure"
	"drivesync/internal/handoff"
	"drivesync/internal/instance"
	"drivesync/internal/launcher"
	"drivesync/internal/logging"
	"drivesync/internal/volume"
)

type commandContext struct {
	configFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	// Test seams; nil selects the real implementation.
	spawner    handoff.Spawner
	enumerator volume.Enumerator
	usage      launcher.UsageFunc
	stdinIsTTY func() bool
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		c.configPath = resolved
		c.configExists = exists
		if err != nil {
			c.configErr = failure.Wrap(failure.ErrConfiguration, "config", "load", resolved, err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = failure.Wrap(failure.ErrConfiguration, "config", "directories", "", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// roleLogger opens the console plus <log_dir>/<role>.log logger.
func (c *commandContext) roleLogger(role string, console io.Writer) (*slog.Logger, io.Closer, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, closer, err := logging.NewFromConfig(cfg, role, console)
	if err != nil {
		return nil, nil, failure.Wrap(failure.ErrConfiguration, "logging", "init", "", err)
	}
	return logger, closer, nil
}

func (c *commandContext) guard(logger *slog.Logger) *instance.Guard {
	return instance.NewGuard(c.config.Paths.StateDir, logger)
}

// roleSpawner starts sibling roles. Interactive roles get the configured
// terminal prefix.
func (c *commandContext) roleSpawner(interactive bool) handoff.Spawner {
	if c.spawner != nil {
		return c.spawner
	}
	s := handoff.ProcessSpawner{}
	if c.configExists {
		s.ConfigPath = c.configPath
	}
	if interactive && c.config != nil {
		s.Terminal = c.config.Launcher.Terminal
	}
	return s
}

func (c *commandContext) volumes() volume.Enumerator {
	if c.enumerator != nil {
		return c.enumerator
	}
	return volume.NewEnumerator()
}

func (c *commandContext) diskUsage() launcher.UsageFunc {
	if c.usage != nil {
		return c.usage
	}
	return volume.Usage
}

func (c *commandContext) interactive() bool {
	if c.stdinIsTTY != nil {
		return c.stdinIsTTY()
	}
	return logging.IsTerminal(os.Stdin)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
