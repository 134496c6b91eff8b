package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"drivesync/internal/failure"
	"drivesync/internal/handoff"
	"drivesync/internal/job"
	"drivesync/internal/launcher"
	"drivesync/internal/logging"
)

type selectionFlags struct {
	subjects string
	all      bool
	mode     string
	del      bool
	days     int
	from     string
	to       string
}

func (f selectionFlags) given(cmd *cobra.Command) bool {
	return cmd.Flags().Changed("subjects") || f.all
}

func (f selectionFlags) selection(defaultDays int) (*launcher.Selection, error) {
	sel := &launcher.Selection{DeleteExisting: f.del}
	if f.all {
		sel.Subjects = job.AllMask
	} else {
		mask, err := launcher.ParseSubjects(f.subjects)
		if err != nil {
			return nil, err
		}
		sel.Subjects = mask
	}
	mode, err := job.ParseMode(f.mode)
	if err != nil {
		return nil, err
	}
	sel.Mode = mode
	sel.RecentDays = f.days
	if sel.RecentDays <= 0 {
		sel.RecentDays = defaultDays
	}
	if f.from != "" {
		if sel.From, err = launcher.ParseDate(f.from, time.Local); err != nil {
			return nil, err
		}
	}
	if f.to != "" {
		if sel.To, err = launcher.ParseDate(f.to, time.Local); err != nil {
			return nil, err
		}
	}
	return sel, nil
}

func newLauncherCommand(ctx *commandContext) *cobra.Command {
	var (
		flags     selectionFlags
		autostart bool
	)
	cmd := &cobra.Command{
		Use:   "launcher [flags] -- <drive>",
		Short: "Choose what to copy onto a drive and start the worker",
		Long: "Shows the drive label and free space, asks which subjects to copy and how,\n" +
			"then starts the worker. Pass --subjects or --all to skip the prompt.\n" +
			"With --autostart it only starts the monitor when launcher.auto_start is set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if autostart {
				started, err := launcher.AutoStart(cmd.Context(), cfg, ctx.roleSpawner(false))
				if err != nil {
					return err
				}
				if started {
					fmt.Fprintln(cmd.OutOrStdout(), "Drive monitor started")
				}
				return nil
			}

			req, err := handoff.DecodeDrive(append([]string{launcherIdentity}, args...))
			if err != nil {
				return err
			}

			var sel *launcher.Selection
			if flags.given(cmd) {
				if sel, err = flags.selection(cfg.Launcher.DefaultRecentDays); err != nil {
					return failure.Wrap(failure.ErrMalformedArgs, "launcher", "flags", "", err)
				}
			}

			logger, closer, err := ctx.roleLogger("launcher", logConsole(cmd, sel == nil))
			if err != nil {
				return err
			}
			defer closer.Close()
			logger = logger.With(logging.String(logging.FieldDrive, req.Drive))

			lock, err := ctx.guard(logger).Enter(cmd.Context(), "launcher")
			if err != nil {
				return err
			}
			defer lock.Release()

			var asker launcher.Asker
			if sel == nil && ctx.interactive() {
				asker = &launcher.Prompter{
					In:          cmd.InOrStdin(),
					Out:         cmd.OutOrStdout(),
					Timeout:     time.Duration(cfg.Launcher.PromptTimeoutSeconds) * time.Second,
					DefaultDays: cfg.Launcher.DefaultRecentDays,
				}
			}
			describer := launcher.Describer{Volumes: ctx.volumes(), Usage: ctx.diskUsage()}
			l := launcher.New(ctx.roleSpawner(true), describer, asker, logger)
			return l.Run(cmd.Context(), req.Drive, sel)
		},
	}

	cmd.Flags().BoolVar(&autostart, "autostart", false, "Start the monitor if launcher.auto_start is enabled, then exit")
	cmd.Flags().StringVar(&flags.subjects, "subjects", "", "Subjects to copy: numbers 1-11 or names, comma separated")
	cmd.Flags().BoolVar(&flags.all, "all", false, "Copy every subject")
	cmd.Flags().StringVar(&flags.mode, "mode", "sync", "sync, low-io, recent or range")
	cmd.Flags().BoolVar(&flags.del, "delete", false, "Delete the existing copy on the drive first")
	cmd.Flags().IntVar(&flags.days, "days", 0, "Days back for --mode recent (default launcher.default_recent_days)")
	cmd.Flags().StringVar(&flags.from, "from", "", "Start date YYYYMMDD for --mode range")
	cmd.Flags().StringVar(&flags.to, "to", "", "End date YYYYMMDD for --mode range (default today)")
	return cmd
}

// logConsole keeps log lines off the terminal while a prompt is shown; the
// role log file still receives them.
func logConsole(cmd *cobra.Command, prompting bool) io.Writer {
	if prompting {
		return io.Discard
	}
	return cmd.ErrOrStderr()
}
