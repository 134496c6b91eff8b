package volume

import (
	"context"
	"sort"
	"strings"

	"github.com/shirou/gopsutil/v4/disk"

	"drivesync/internal/failure"
)

// Kind tags a volume as fixed or removable storage.
type Kind int

const (
	Fixed Kind = iota
	Removable
)

func (k Kind) String() string {
	if k == Removable {
		return "removable"
	}
	return "fixed"
}

// Volume is one mounted volume at enumeration time. ID is the drive letter on
// Windows ("E:") and the mountpoint elsewhere.
type Volume struct {
	ID         string
	Kind       Kind
	Mountpoint string
	Device     string
	Label      string
	Fstype     string
}

// Snapshot is an immutable, ID-ordered set of volumes.
type Snapshot struct {
	volumes []Volume
}

// NewSnapshot copies volumes into a snapshot. Duplicate IDs keep the first
// occurrence.
func NewSnapshot(volumes ...Volume) Snapshot {
	seen := make(map[string]struct{}, len(volumes))
	out := make([]Volume, 0, len(volumes))
	for _, v := range volumes {
		if v.ID == "" {
			continue
		}
		if _, ok := seen[v.ID]; ok {
			continue
		}
		seen[v.ID] = struct{}{}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return Snapshot{volumes: out}
}

// Len returns the number of volumes.
func (s Snapshot) Len() int { return len(s.volumes) }

// Volumes returns a copy of the volumes in ID order.
func (s Snapshot) Volumes() []Volume {
	return append([]Volume(nil), s.volumes...)
}

// IDs returns the volume IDs in order.
func (s Snapshot) IDs() []string {
	ids := make([]string, len(s.volumes))
	for i, v := range s.volumes {
		ids[i] = v.ID
	}
	return ids
}

// Lookup returns the volume with the given ID.
func (s Snapshot) Lookup(id string) (Volume, bool) {
	idx := sort.Search(len(s.volumes), func(i int) bool { return s.volumes[i].ID >= id })
	if idx < len(s.volumes) && s.volumes[idx].ID == id {
		return s.volumes[idx], true
	}
	return Volume{}, false
}

// Has reports whether id is present.
func (s Snapshot) Has(id string) bool {
	_, ok := s.Lookup(id)
	return ok
}

// Enumerator produces snapshots of the OS volume table.
type Enumerator interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

type partitionLister func(ctx context.Context, all bool) ([]disk.PartitionStat, error)

// SystemEnumerator enumerates volumes through gopsutil.
type SystemEnumerator struct {
	list     partitionLister
	classify func(p disk.PartitionStat) (Kind, string)
}

// NewEnumerator returns an enumerator for the host OS.
func NewEnumerator() *SystemEnumerator {
	return &SystemEnumerator{
		list:     disk.PartitionsWithContext,
		classify: classifyPartition,
	}
}

// Snapshot implements Enumerator. Any OS error is reported as
// failure.ErrDeviceQuery.
func (e *SystemEnumerator) Snapshot(ctx context.Context) (Snapshot, error) {
	parts, err := e.list(ctx, false)
	if err != nil {
		return Snapshot{}, failure.Wrap(failure.ErrDeviceQuery, "volume", "enumerate partitions", "", err)
	}
	volumes := make([]Volume, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p.Mountpoint) == "" {
			continue
		}
		kind, label := e.classify(p)
		volumes = append(volumes, Volume{
			ID:         volumeID(p),
			Kind:       kind,
			Mountpoint: p.Mountpoint,
			Device:     p.Device,
			Label:      label,
			Fstype:     p.Fstype,
		})
	}
	return NewSnapshot(volumes...), nil
}

// Usage reports free and total bytes for the volume holding path.
func Usage(ctx context.Context, path string) (free, total uint64, err error) {
	stat, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return 0, 0, failure.Wrap(failure.ErrDeviceQuery, "volume", "usage", path, err)
	}
	return stat.Free, stat.Total, nil
}
