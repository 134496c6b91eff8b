//go:build windows

package instance

import (
	"context"
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procShowWindow          = user32.NewProc("ShowWindow")
	procSetForegroundWindow = user32.NewProc("SetForegroundWindow")
)

type platformForegrounder struct{}

type windowSearch struct {
	pid  uint32
	hwnd windows.HWND
}

var enumWindowsCallback = syscall.NewCallback(func(hwnd windows.HWND, param uintptr) uintptr {
	search := (*windowSearch)(unsafe.Pointer(param))
	var owner uint32
	if _, err := windows.GetWindowThreadProcessId(hwnd, &owner); err != nil {
		return 1
	}
	if owner != search.pid || !windows.IsWindowVisible(hwnd) {
		return 1
	}
	search.hwnd = hwnd
	return 0
})

// Foreground restores the first visible top-level window owned by pid and
// makes it the foreground window.
func (platformForegrounder) Foreground(ctx context.Context, pid int32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if pid <= 0 {
		return fmt.Errorf("invalid pid %d", pid)
	}
	search := &windowSearch{pid: uint32(pid)}
	// EnumWindows reports an error when the callback stops enumeration early.
	_ = windows.EnumWindows(enumWindowsCallback, unsafe.Pointer(search))
	if search.hwnd == 0 {
		return fmt.Errorf("no visible window for pid %d", pid)
	}
	// ShowWindow returns the previous visibility, not a status.
	_, _, _ = procShowWindow.Call(uintptr(search.hwnd), uintptr(windows.SW_RESTORE))
	if ret, _, err := procSetForegroundWindow.Call(uintptr(search.hwnd)); ret == 0 {
		return fmt.Errorf("SetForegroundWindow: %w", err)
	}
	return nil
}
