//go:build !windows

package taskbar

// New returns the platform taskbar.
func New() Taskbar { return Unsupported{} }
