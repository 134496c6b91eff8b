// Package volume enumerates mounted volumes and tags them fixed or removable.
//
// Snapshots are values; callers keep the previous one and compare it with the
// next. Windows classification uses GetDriveType, other platforms read the
// kernel's removable flag under /sys/class/block.
package volume
