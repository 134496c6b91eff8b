package main

import (
	"fmt"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"drivesync/internal/failure"
	"drivesync/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool

	cmd := &cobra.Command{
		Use:   "logs [monitor|launcher|worker]",
		Short: "Print the log of one role",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			role := "monitor"
			if len(args) == 1 {
				role = strings.ToLower(strings.TrimSpace(args[0]))
			}
			if !slices.Contains(logs.Roles, role) {
				return failure.Wrap(failure.ErrMalformedArgs, "logs", "role", fmt.Sprintf("unknown role %q (want %s)", role, strings.Join(logs.Roles, ", ")), nil)
			}

			path := logs.Path(cfg, role)
			tail, offset, err := logs.Last(path, lines)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, line := range tail {
				fmt.Fprintln(out, line)
			}
			if !follow {
				if len(tail) == 0 && offset == 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "No log yet at %s\n", path)
				}
				return nil
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			follower := &logs.Follower{Path: path, Offset: offset}
			return follower.Run(runCtx, func(line string) {
				fmt.Fprintln(out, line)
			})
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to print")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing lines as they are written")
	return cmd
}
