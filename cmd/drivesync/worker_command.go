package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"drivesync/internal/config"
	"drivesync/internal/deps"
	"drivesync/internal/failure"
	"drivesync/internal/fastcopy"
	"drivesync/internal/handoff"
	"drivesync/internal/history"
	"drivesync/internal/job"
	"drivesync/internal/launcher"
	"drivesync/internal/logging"
	"drivesync/internal/notifications"
	"drivesync/internal/progress"
	"drivesync/internal/taskbar"
	"drivesync/internal/worker"
)

const workerIdentity = launcher.WorkerIdentity

func newWorkerCommand(ctx *commandContext) *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "worker [flags] -- <drive> <11 subject flags> <mode> <True|False> <extra>",
		Short: "Copy the selected subjects onto a drive",
		Long: "Runs FastCopy once per selected subject and shows progress. The arguments\n" +
			"are produced by the launcher; Ctrl+C cancels the running copy.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			j, err := handoff.DecodeJob(append([]string{workerIdentity}, args...), handoff.Tuning{
				BufferSizeMB: cfg.Tool.BufferSizeMB,
				Concurrency:  cfg.Tool.Concurrency,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fancy := !plain && logging.IsTerminal(out)
			return runWorker(cmd.Context(), ctx, cfg, j, out, fancy)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "Print one line per step instead of a progress bar")
	return cmd
}

func runWorker(parent context.Context, ctx *commandContext, cfg *config.Config, j job.SyncJob, out io.Writer, fancy bool) error {
	var console io.Writer
	if fancy {
		console = io.Discard
	}
	logger, closer, err := ctx.roleLogger("worker", console)
	if err != nil {
		return err
	}
	defer closer.Close()
	logger = logger.With(logging.String(logging.FieldDrive, j.Drive))

	lock, err := ctx.guard(logger).Enter(parent, "worker")
	if err != nil {
		return err
	}
	defer lock.Release()

	info := launcher.Describer{Volumes: ctx.volumes()}.Describe(parent, j.Drive)

	runner, err := fastcopy.New(toolPath(cfg.Tool.Binary), fastcopy.WithLogger(logger))
	if err != nil {
		return err
	}
	w := worker.New(cfg, runner, worker.WithLogger(logger))

	store, runID := beginHistory(parent, cfg, j, info.Label, logger)
	if store != nil {
		defer store.Close()
		logger = logger.With(logging.String(logging.FieldRunID, runID))
	}

	bar := progress.NewConsole(out, fancy)
	reporter := progress.New(cfg,
		progress.WithTaskbar(taskbar.New()),
		progress.WithNotifier(notifications.New(cfg, logger)),
		progress.WithSink(bar),
		progress.WithVolume(info.Label, j.Drive),
		progress.WithLogger(logger),
	)

	signalCtx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	runDone := make(chan struct{})
	go func() {
		select {
		case <-signalCtx.Done():
			w.Cancel()
		case <-runDone:
		}
	}()

	fmt.Fprintf(out, "Syncing %d subject(s) to %s\n", j.Subjects.Count(), info.Title())
	results := make(chan worker.Result, 1)
	go func() { results <- w.Run(context.WithoutCancel(parent), j) }()
	reporter.Consume(parent, w.Progress())
	result := <-results
	close(runDone)
	reporter.Close()
	bar.Stop()

	if store != nil {
		if err := store.Finish(context.WithoutCancel(parent), runID, result); err != nil {
			logger.Warn("history not updated", logging.Error(err))
		}
	}
	fmt.Fprintf(out, "%s in %s\n", summary(result), result.Duration().Round(time.Second))
	return result.Err
}

// beginHistory opens the run store. History is best effort: failures are
// logged and the run proceeds unrecorded.
func beginHistory(ctx context.Context, cfg *config.Config, j job.SyncJob, label string, logger *slog.Logger) (*history.Store, string) {
	store, err := history.Open(cfg)
	if err != nil {
		logging.WarnWithContext(logger, "history unavailable", "history_open_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run will not appear in drivesync history"),
		)
		return nil, ""
	}
	id, err := store.Begin(ctx, j, label)
	if err != nil {
		logging.WarnWithContext(logger, "history not recorded", "history_begin_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run will not appear in drivesync history"),
		)
		_ = store.Close()
		return nil, ""
	}
	return store, id
}

// toolPath prefers the resolved location so a sidecar copy is found; the
// worker's own preflight reports a missing tool.
func toolPath(binary string) string {
	if resolved, err := deps.ResolveTool(binary); err == nil {
		return resolved
	}
	return binary
}

func summary(r worker.Result) string {
	switch r.Phase {
	case worker.Completed:
		if n := len(r.FailedSubjects); n > 0 {
			return fmt.Sprintf("Finished with %d failed subject(s): %s", n, job.MaskOf(r.FailedSubjects...))
		}
		return fmt.Sprintf("Synced %d subject(s)", r.Total)
	case worker.Cancelled:
		return fmt.Sprintf("Cancelled after %d of %d subject(s)", r.Completed, r.Total)
	default:
		if errors.Is(r.Err, failure.ErrAborted) {
			return fmt.Sprintf("Aborted after failed subject(s): %s", job.MaskOf(r.FailedSubjects...))
		}
		return "Sync failed"
	}
}
