//go:build windows

package volume

import (
	"strings"

	"github.com/shirou/gopsutil/v4/disk"
	"golang.org/x/sys/windows"
)

func volumeID(p disk.PartitionStat) string {
	id := strings.TrimSuffix(p.Mountpoint, "\\")
	if len(id) >= 2 && id[1] == ':' {
		return strings.ToUpper(id[:2])
	}
	return id
}

func classifyPartition(p disk.PartitionStat) (Kind, string) {
	root := volumeID(p) + "\\"
	rootPtr, err := windows.UTF16PtrFromString(root)
	if err != nil {
		return Fixed, ""
	}

	kind := Fixed
	if windows.GetDriveType(rootPtr) == windows.DRIVE_REMOVABLE {
		kind = Removable
	}

	var volumeNameBuf [windows.MAX_PATH + 1]uint16
	var fileSystemNameBuf [windows.MAX_PATH + 1]uint16
	var serial, maxComponentLength, fileSystemFlags uint32
	err = windows.GetVolumeInformation(
		rootPtr,
		&volumeNameBuf[0],
		uint32(len(volumeNameBuf)),
		&serial,
		&maxComponentLength,
		&fileSystemFlags,
		&fileSystemNameBuf[0],
		uint32(len(fileSystemNameBuf)),
	)
	if err != nil {
		return kind, ""
	}
	return kind, windows.UTF16ToString(volumeNameBuf[:])
}
