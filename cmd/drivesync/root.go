package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	cmd, _ := buildRootCommand()
	return cmd
}

// buildRootCommand also returns the shared command context so callers can
// install seams before Execute.
func buildRootCommand() (*cobra.Command, *commandContext) {
	var configFlag string

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "drivesync",
		Short:         "Copy shared subject folders onto inserted USB drives",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newMonitorCommand(ctx))
	rootCmd.AddCommand(newLauncherCommand(ctx))
	rootCmd.AddCommand(newWorkerCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newDepsCommand(ctx))
	rootCmd.AddCommand(newVolumesCommand(ctx))
	rootCmd.AddCommand(newLogsCommand(ctx))

	return rootCmd, ctx
}
