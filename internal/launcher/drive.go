package launcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"drivesync/internal/volume"
)

const fallbackLabel = "USB drive"

// DriveInfo is what the prompt shows about the drive.
type DriveInfo struct {
	Drive string
	Label string
	Free  uint64
	Total uint64
}

// Title is "LABEL (E:)".
func (d DriveInfo) Title() string {
	label := strings.TrimSpace(d.Label)
	if label == "" {
		label = fallbackLabel
	}
	return fmt.Sprintf("%s (%s)", label, d.Drive)
}

// Space summarizes free and total capacity, or "size unknown".
func (d DriveInfo) Space() string {
	if d.Total == 0 {
		return "size unknown"
	}
	return fmt.Sprintf("%s free of %s", humanize.IBytes(d.Free), humanize.IBytes(d.Total))
}

// UsageFunc reports free and total bytes for a path.
type UsageFunc func(ctx context.Context, path string) (free, total uint64, err error)

// Describer gathers DriveInfo from the volume table and disk usage.
type Describer struct {
	Volumes volume.Enumerator
	Usage   UsageFunc
}

// Describe never fails: missing pieces fall back to an unknown size and
// the generic label.
func (d Describer) Describe(ctx context.Context, drive string) DriveInfo {
	info := DriveInfo{Drive: drive}
	if d.Volumes != nil {
		if snap, err := d.Volumes.Snapshot(ctx); err == nil {
			if v, ok := findVolume(snap, drive); ok {
				info.Label = v.Label
			}
		}
	}
	if d.Usage != nil {
		if free, total, err := d.Usage(ctx, usagePath(drive)); err == nil {
			info.Free, info.Total = free, total
		}
	}
	return info
}

func findVolume(snap volume.Snapshot, drive string) (volume.Volume, bool) {
	if v, ok := snap.Lookup(drive); ok {
		return v, true
	}
	for _, v := range snap.Volumes() {
		if filepath.Clean(v.Mountpoint) == filepath.Clean(drive) {
			return v, true
		}
	}
	return volume.Volume{}, false
}

// usagePath turns "E:" into the drive root "E:\".
func usagePath(drive string) string {
	if len(drive) == 2 && drive[1] == ':' {
		return drive + `\`
	}
	return drive
}
