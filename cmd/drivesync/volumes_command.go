package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"drivesync/internal/failure"
)

func newVolumesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "volumes",
		Short: "List mounted volumes as the monitor sees them",
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := ctx.volumes().Snapshot(cmd.Context())
			if err != nil {
				return failure.Wrap(failure.ErrDeviceQuery, "volume", "snapshot", "", err)
			}
			usage := ctx.diskUsage()
			rows := make([][]string, 0, snapshot.Len())
			for _, v := range snapshot.Volumes() {
				space := "-"
				if free, total, err := usage(cmd.Context(), v.Mountpoint); err == nil && total > 0 {
					space = fmt.Sprintf("%s / %s", humanize.IBytes(free), humanize.IBytes(total))
				}
				rows = append(rows, []string{v.ID, v.Kind.String(), v.Label, v.Mountpoint, v.Fstype, space})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Kind", "Label", "Mountpoint", "Filesystem", "Free / Total"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
}
