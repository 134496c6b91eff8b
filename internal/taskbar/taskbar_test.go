package taskbar_test

import (
	"errors"
	"runtime"
	"testing"

	"drivesync/internal/taskbar"
)

func TestUnsupportedNeverPanics(t *testing.T) {
	var tb taskbar.Taskbar = taskbar.Unsupported{}
	checks := []error{
		tb.Init(),
		tb.SetMode(taskbar.Normal),
		tb.SetProgress(3, 10),
		tb.End(),
	}
	for i, err := range checks {
		if !errors.Is(err, taskbar.ErrUnsupported) {
			t.Fatalf("call %d: expected ErrUnsupported, got %v", i, err)
		}
	}
}

func TestNewOffWindowsIsUnsupported(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("windows uses the COM taskbar")
	}
	if _, ok := taskbar.New().(taskbar.Unsupported); !ok {
		t.Fatalf("expected Unsupported, got %T", taskbar.New())
	}
}

func TestModeValuesMatchTaskbarFlags(t *testing.T) {
	cases := map[taskbar.Mode]int{
		taskbar.NoProgress:    0,
		taskbar.Indeterminate: 1,
		taskbar.Normal:        2,
		taskbar.Error:         4,
		taskbar.Paused:        8,
	}
	for mode, want := range cases {
		if int(mode) != want {
			t.Errorf("%s = %d, want %d", mode, int(mode), want)
		}
	}
	if taskbar.Mode(3).String() != "unknown" {
		t.Fatal("expected unknown for unlisted mode")
	}
}
