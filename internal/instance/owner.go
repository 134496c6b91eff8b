package instance

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// OwnerFinder locates the live process holding a role lock.
type OwnerFinder interface {
	FindOwner(ctx context.Context, held *HeldError) (int32, bool)
}

// ProcessOwnerFinder trusts the recorded PID when that process is alive and
// otherwise scans for another copy of this executable running the role.
type ProcessOwnerFinder struct {
	// Executable defaults to os.Executable().
	Executable string
}

func (f ProcessOwnerFinder) FindOwner(ctx context.Context, held *HeldError) (int32, bool) {
	if held == nil {
		return 0, false
	}
	self := int32(os.Getpid())
	if held.PID > 0 && held.PID != self {
		if alive, err := process.PidExistsWithContext(ctx, held.PID); err == nil && alive {
			return held.PID, true
		}
	}

	exe := f.Executable
	if exe == "" {
		var err error
		if exe, err = os.Executable(); err != nil {
			return 0, false
		}
	}
	base := exeBase(exe)

	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return 0, false
	}
	for _, p := range procs {
		if p.Pid == self {
			continue
		}
		args, err := p.CmdlineSliceWithContext(ctx)
		if err != nil || len(args) == 0 {
			continue
		}
		if matchesRole(args, base, held.Role) {
			return p.Pid, true
		}
	}
	return 0, false
}

// valueFlags are the persistent flags that take a separate value.
var valueFlags = []string{"--config", "-c"}

// matchesRole reports whether argv belongs to base running role as its
// subcommand.
func matchesRole(args []string, base, role string) bool {
	if exeBase(args[0]) != base {
		return false
	}
	return subcommand(args[1:]) == role
}

// subcommand returns the first positional argument, skipping flags and
// the values of valueFlags.
func subcommand(args []string) string {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			return ""
		case slices.Contains(valueFlags, arg):
			i++
		case strings.HasPrefix(arg, "-"):
		default:
			return arg
		}
	}
	return ""
}

func exeBase(path string) string {
	name := strings.ToLower(filepath.Base(path))
	return strings.TrimSuffix(name, ".exe")
}
