package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"drivesync/internal/drivemon"
	"drivesync/internal/handoff"
	"drivesync/internal/logging"
	"drivesync/internal/volume"
)

const launcherIdentity = "launcher"

func newMonitorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Watch for inserted drives and open the launcher for each",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMonitor(cmd.Context(), cmd, ctx)
		},
	}
}

func runMonitor(parent context.Context, cmd *cobra.Command, ctx *commandContext) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, closer, err := ctx.roleLogger("monitor", cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closer.Close()

	lock, err := ctx.guard(logger).Enter(parent, "monitor")
	if err != nil {
		return err
	}
	defer lock.Release()

	signalCtx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	spawner := ctx.roleSpawner(true)
	handler := drivemon.HandlerFunc(func(hctx context.Context, v volume.Volume) error {
		tokens, err := handoff.EncodeDrive(launcherIdentity, handoff.NormalizeDrive(v.ID))
		if err != nil {
			return err
		}
		if err := spawner.Spawn(hctx, tokens); err != nil {
			return fmt.Errorf("spawn launcher: %w", err)
		}
		logger.Info("launcher started",
			logging.String(logging.FieldEventType, "launcher_spawned"),
			logging.String(logging.FieldDrive, v.ID),
			logging.String("label", v.Label),
		)
		return nil
	})

	opts := []drivemon.Option{drivemon.WithLogger(logger)}
	if cfg.Monitor.NetlinkWakeup {
		wake, stop := drivemon.StartWakeup(signalCtx, logger)
		defer stop()
		if wake != nil {
			opts = append(opts, drivemon.WithWakeup(wake))
		}
	}

	logger.Info("drive monitor started",
		logging.String(logging.FieldEventType, "monitor_started"),
		logging.Int("poll_interval_ms", cfg.Monitor.PollIntervalMS),
	)
	return drivemon.New(cfg, ctx.volumes(), handler, opts...).Run(signalCtx)
}
