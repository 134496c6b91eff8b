package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"drivesync/internal/failure"
	"drivesync/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var pruneDays int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent sync runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				return failure.Wrap(failure.ErrConfiguration, "history", "open", cfg.HistoryPath(), err)
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if pruneDays > 0 {
				cutoff := time.Now().AddDate(0, 0, -pruneDays)
				removed, err := store.Prune(cmd.Context(), cutoff)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed %d run(s) older than %d day(s)\n", removed, pruneDays)
			}

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Started", "Drive", "Label", "Subjects", "Mode", "Status", "Duration", "Failed"},
				historyRows(runs),
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	cmd.Flags().IntVar(&pruneDays, "prune-days", 0, "Delete runs started more than this many days ago first")
	return cmd
}

func historyRows(runs []history.Run) [][]string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		status := run.Phase
		duration := "-"
		if run.Interrupted() {
			status = "interrupted"
		} else {
			duration = run.Duration().Round(time.Second).String()
		}
		failed := "-"
		if run.FailedSubjects.Count() > 0 {
			failed = run.FailedSubjects.String()
		}
		label := run.VolumeLabel
		if label == "" {
			label = "-"
		}
		rows = append(rows, []string{
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			run.Drive,
			label,
			run.Subjects.String(),
			run.Mode.String(),
			status,
			duration,
			failed,
		})
	}
	return rows
}
