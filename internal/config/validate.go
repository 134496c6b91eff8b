package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"drivesync/internal/job"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMonitor(); err != nil {
		return err
	}
	if err := c.validateSources(); err != nil {
		return err
	}
	if err := c.validateTool(); err != nil {
		return err
	}
	if err := c.validateLauncher(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateMonitor() error {
	if c.Monitor.PollIntervalMS <= 0 {
		return errors.New("monitor.poll_interval_ms must be positive")
	}
	if c.Monitor.MaxQueryFailures <= 0 {
		return errors.New("monitor.max_query_failures must be positive")
	}
	return nil
}

func (c *Config) validateSources() error {
	if c.Sources.Root == "" {
		return errors.New("sources.root must be set")
	}
	for key := range c.Sources.Folders {
		if _, err := job.ParseSubject(key); err != nil {
			return fmt.Errorf("sources.folders: %w", err)
		}
	}
	return nil
}

func (c *Config) validateTool() error {
	if c.Tool.BufferSizeMB < 0 {
		return errors.New("tool.buffer_size_mb must not be negative")
	}
	if c.Tool.Concurrency < 0 {
		return errors.New("tool.concurrency must not be negative")
	}
	return nil
}

func (c *Config) validateLauncher() error {
	if c.Launcher.PromptTimeoutSeconds < 0 {
		return errors.New("launcher.prompt_timeout_seconds must not be negative")
	}
	if c.Launcher.DefaultRecentDays <= 0 {
		return errors.New("launcher.default_recent_days must be positive")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	topic := strings.TrimSpace(c.Notifications.NtfyTopic)
	if topic == "" {
		return nil
	}
	parsed, err := url.Parse(topic)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("notifications.ntfy_topic must be a full URL, got %q", topic)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	if c.Logging.MaxSizeMB <= 0 {
		return errors.New("logging.max_size_mb must be positive")
	}
	if c.Logging.MaxBackups < 0 {
		return errors.New("logging.max_backups must not be negative")
	}
	return nil
}
