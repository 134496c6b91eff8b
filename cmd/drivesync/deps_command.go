package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"drivesync/internal/deps"
	"drivesync/internal/failure"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check the copy tool and source folders",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := deps.CheckBinaries(deps.Requirements(cfg))
			statuses = append(statuses, deps.CheckSources(cfg)...)

			rows := make([][]string, 0, len(statuses))
			var missing []string
			for _, status := range statuses {
				state := "ok"
				if !status.Available {
					state = "missing"
					if status.Optional {
						state = "missing (optional)"
					} else {
						missing = append(missing, status.Name)
					}
				}
				rows = append(rows, []string{status.Name, state, status.Command, status.Detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Dependency", "Status", "Path", "Detail"}, rows, nil))

			if len(missing) > 0 {
				return failure.Wrap(failure.ErrToolMissing, "deps", "check", fmt.Sprintf("%d required dependency(ies) missing", len(missing)), nil)
			}
			return nil
		},
	}
}
