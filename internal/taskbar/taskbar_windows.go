//go:build windows

package taskbar

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"syscall"
	"unsafe"

	"github.com/go-ole/go-ole"
	"golang.org/x/sys/windows"
)

var (
	clsidTaskbarList = ole.NewGUID("{56FDF344-FD6D-11d0-958A-006097C9A090}")
	iidTaskbarList3  = ole.NewGUID("{ea1afb91-9e28-4b86-90e9-9e9f8a5eefaf}")

	kernel32             = windows.NewLazySystemDLL("kernel32.dll")
	procGetConsoleWindow = kernel32.NewProc("GetConsoleWindow")
)

var errNotInitialized = errors.New("taskbar not initialized")

// iTaskbarList3Vtbl lists the ITaskbarList3 slots up to SetProgressState.
type iTaskbarList3Vtbl struct {
	ole.IUnknownVtbl
	HrInit               uintptr
	AddTab               uintptr
	DeleteTab            uintptr
	ActivateTab          uintptr
	SetActiveAlt         uintptr
	MarkFullscreenWindow uintptr
	SetProgressValue     uintptr
	SetProgressState     uintptr
}

type iTaskbarList3 struct {
	ole.IUnknown
}

func (t *iTaskbarList3) vtbl() *iTaskbarList3Vtbl {
	return (*iTaskbarList3Vtbl)(unsafe.Pointer(t.RawVTable))
}

func (t *iTaskbarList3) call(slot uintptr, args ...uintptr) error {
	hr, _, _ := syscall.SyscallN(slot, append([]uintptr{uintptr(unsafe.Pointer(t))}, args...)...)
	if hr != 0 {
		return ole.NewError(hr)
	}
	return nil
}

// comTaskbar owns one OS thread for its COM apartment; every call is
// marshalled onto that thread.
type comTaskbar struct {
	mu    sync.Mutex
	calls chan func()
	done  chan struct{}
	list  *iTaskbarList3
	hwnd  uintptr
}

// New returns the platform taskbar.
func New() Taskbar { return &comTaskbar{} }

func (t *comTaskbar) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.calls != nil {
		return nil
	}

	hwnd, _, _ := procGetConsoleWindow.Call()
	if hwnd == 0 {
		return errors.New("no console window")
	}

	ready := make(chan error, 1)
	calls := make(chan func())
	done := make(chan struct{})
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(done)

		if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
			ready <- fmt.Errorf("initialize COM: %w", err)
			return
		}
		defer ole.CoUninitialize()

		unknown, err := ole.CreateInstance(clsidTaskbarList, iidTaskbarList3)
		if err != nil {
			ready <- fmt.Errorf("create TaskbarList: %w", err)
			return
		}
		list := (*iTaskbarList3)(unsafe.Pointer(unknown))
		defer list.Release()
		if err := list.call(list.vtbl().HrInit); err != nil {
			ready <- fmt.Errorf("HrInit: %w", err)
			return
		}
		t.list = list
		ready <- nil

		for fn := range calls {
			fn()
		}
	}()

	if err := <-ready; err != nil {
		<-done
		return err
	}
	t.calls = calls
	t.done = done
	t.hwnd = hwnd
	return nil
}

// do runs fn on the COM thread and returns its error.
func (t *comTaskbar) do(fn func(list *iTaskbarList3) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.calls == nil {
		return errNotInitialized
	}
	result := make(chan error, 1)
	t.calls <- func() { result <- fn(t.list) }
	return <-result
}

func (t *comTaskbar) SetMode(mode Mode) error {
	return t.do(func(list *iTaskbarList3) error {
		return list.call(list.vtbl().SetProgressState, t.hwnd, uintptr(mode))
	})
}

func (t *comTaskbar) SetProgress(done, total uint64) error {
	return t.do(func(list *iTaskbarList3) error {
		return list.call(list.vtbl().SetProgressValue, t.hwnd, uintptr(done), uintptr(total))
	})
}

// End clears the button and releases the COM thread.
func (t *comTaskbar) End() error {
	err := t.SetMode(NoProgress)
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.calls == nil {
		return err
	}
	close(t.calls)
	<-t.done
	t.calls = nil
	t.list = nil
	return err
}
