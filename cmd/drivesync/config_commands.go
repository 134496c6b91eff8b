package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"drivesync/internal/config"
	"drivesync/internal/instance"
	"drivesync/internal/logging"
)

const settingsRole = "settings"

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigShowCommand(ctx))
	configCmd.AddCommand(newConfigGetCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a commented sample configuration",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTarget(targetPath)
			if err != nil {
				return err
			}

			// The settings lock keeps two init runs from racing on one file.
			stateDir, err := config.ExpandPath(config.Default().Paths.StateDir)
			if err != nil {
				return fmt.Errorf("resolve state directory: %w", err)
			}
			lock, err := instance.NewGuard(stateDir, logging.NewNop()).Enter(cmd.Context(), settingsRole)
			if err != nil {
				return err
			}
			defer lock.Release()

			if err := writeSample(target, overwrite); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set sources.root and tool.binary before inserting a drive.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Where to write the file (default: the per-user config path)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

func initTarget(flag string) (string, error) {
	if flag = strings.TrimSpace(flag); flag != "" {
		return config.ExpandPath(flag)
	}
	return config.DefaultConfigPath()
}

// writeSample creates target with the embedded sample. Without overwrite an
// existing file is left untouched.
func writeSample(target string, overwrite bool) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	file, err := os.OpenFile(target, flags, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%s already exists; pass --overwrite to replace it", target)
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", target, err)
	}
	if _, err := file.WriteString(config.Sample()); err != nil {
		_ = file.Close()
		return fmt.Errorf("write %s: %w", target, err)
	}
	return file.Close()
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ctx.ensureConfig(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)
			if !ctx.configExists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			data, err := cfg.Encode()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newConfigGetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "get [key]",
		Short: "Print one configuration value, or every key when none is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				value, err := cfg.Get(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(out, value)
				return nil
			}
			keys, err := cfg.Keys()
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(keys))
			for _, key := range keys {
				value, err := cfg.Get(key)
				if err != nil {
					return err
				}
				rows = append(rows, []string{key, value})
			}
			fmt.Fprintln(out, renderTable([]string{"Key", "Value"}, rows, nil))
			return nil
		},
	}
}
