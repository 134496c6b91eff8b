// Package taskbar mirrors sync progress onto the OS taskbar button.
//
// The Windows implementation drives ITaskbarList3 on the console window.
// Everywhere else New returns Unsupported, whose methods report
// ErrUnsupported and never panic.
package taskbar

import "errors"

// ErrUnsupported is returned by every method of Unsupported.
var ErrUnsupported = errors.New("taskbar progress is not supported on this platform")

// Mode matches the TBPF_* progress states.
type Mode int

const (
	NoProgress    Mode = 0x0
	Indeterminate Mode = 0x1
	Normal        Mode = 0x2
	Error         Mode = 0x4
	Paused        Mode = 0x8
)

func (m Mode) String() string {
	switch m {
	case NoProgress:
		return "none"
	case Indeterminate:
		return "indeterminate"
	case Normal:
		return "normal"
	case Error:
		return "error"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// Taskbar is the progress capability of the taskbar button.
type Taskbar interface {
	Init() error
	SetMode(mode Mode) error
	SetProgress(done, total uint64) error
	End() error
}

// Unsupported is the no-op Taskbar.
type Unsupported struct{}

func (Unsupported) Init() error                   { return ErrUnsupported }
func (Unsupported) SetMode(Mode) error            { return ErrUnsupported }
func (Unsupported) SetProgress(_, _ uint64) error { return ErrUnsupported }
func (Unsupported) End() error                    { return ErrUnsupported }
