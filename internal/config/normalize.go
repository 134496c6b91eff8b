package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeSources(); err != nil {
		return err
	}
	c.normalizeTool()
	c.normalizeLauncher()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSources() error {
	var err error
	if c.Sources.Root, err = expandPath(strings.TrimSpace(c.Sources.Root)); err != nil {
		return fmt.Errorf("sources.root: %w", err)
	}
	folders := make(map[string]string, len(c.Sources.Folders))
	for key, value := range c.Sources.Folders {
		folders[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	c.Sources.Folders = folders
	return nil
}

func (c *Config) normalizeTool() {
	c.Tool.Binary = strings.TrimSpace(c.Tool.Binary)
	if c.Tool.Binary == "" {
		c.Tool.Binary = defaultToolBinary
	}
}

func (c *Config) normalizeLauncher() {
	terminal := c.Launcher.Terminal[:0]
	for _, part := range c.Launcher.Terminal {
		if part = strings.TrimSpace(part); part != "" {
			terminal = append(terminal, part)
		}
	}
	c.Launcher.Terminal = terminal
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
