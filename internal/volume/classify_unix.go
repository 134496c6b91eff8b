//go:build !windows

package volume

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v4/disk"
)

var (
	sysBlockDir = "/sys/class/block"
	byLabelDir  = "/dev/disk/by-label"
)

var removableMountRoots = []string{"/media/", "/run/media/", "/mnt/", "/Volumes/"}

func volumeID(p disk.PartitionStat) string {
	return filepath.Clean(p.Mountpoint)
}

func classifyPartition(p disk.PartitionStat) (Kind, string) {
	return classifyDevice(p.Device, p.Mountpoint), lookupLabel(p.Device, p.Mountpoint)
}

// classifyDevice reads the kernel's removable flag for the parent disk and
// falls back to the mount location.
func classifyDevice(device, mountpoint string) Kind {
	name := filepath.Base(device)
	if strings.HasPrefix(device, "/dev/") && name != "" {
		if resolved, err := filepath.EvalSymlinks(filepath.Join(sysBlockDir, name)); err == nil {
			for _, candidate := range []string{
				filepath.Join(resolved, "removable"),
				filepath.Join(filepath.Dir(resolved), "removable"),
			} {
				data, err := os.ReadFile(candidate)
				if err != nil {
					continue
				}
				if strings.TrimSpace(string(data)) == "1" {
					return Removable
				}
			}
		}
	}
	for _, root := range removableMountRoots {
		if strings.HasPrefix(mountpoint, root) {
			return Removable
		}
	}
	return Fixed
}

func lookupLabel(device, mountpoint string) string {
	entries, err := os.ReadDir(byLabelDir)
	if err == nil {
		for _, entry := range entries {
			target, err := filepath.EvalSymlinks(filepath.Join(byLabelDir, entry.Name()))
			if err != nil {
				continue
			}
			if target == device {
				return unescapeLabel(entry.Name())
			}
		}
	}
	for _, root := range removableMountRoots {
		if strings.HasPrefix(mountpoint, root) {
			return filepath.Base(mountpoint)
		}
	}
	return ""
}

// unescapeLabel decodes udev's \x20 style escapes.
func unescapeLabel(name string) string {
	if !strings.Contains(name, `\x`) {
		return name
	}
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		if name[i] == '\\' && i+3 < len(name) && name[i+1] == 'x' {
			if v, ok := hexByte(name[i+2], name[i+3]); ok {
				b.WriteByte(v)
				i += 3
				continue
			}
		}
		b.WriteByte(name[i])
	}
	return b.String()
}

func hexByte(hi, lo byte) (byte, bool) {
	h, ok1 := hexNibble(hi)
	l, ok2 := hexNibble(lo)
	return h<<4 | l, ok1 && ok2
}

func hexNibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
