package fastcopy

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// KillStray kills direct children of this process whose executable name
// matches binary. Cancellation normally kills the tool through its process
// handle; this catches copies that outlived it. Returns the killed PIDs.
func KillStray(ctx context.Context, binary string) ([]int32, error) {
	want := toolName(binary)
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	self := int32(os.Getpid())
	var killed []int32
	for _, p := range procs {
		ppid, err := p.PpidWithContext(ctx)
		if err != nil || ppid != self {
			continue
		}
		name, err := p.NameWithContext(ctx)
		if err != nil || toolName(name) != want {
			continue
		}
		if err := p.KillWithContext(ctx); err == nil {
			killed = append(killed, p.Pid)
		}
	}
	return killed, nil
}

func toolName(path string) string {
	name := strings.ToLower(filepath.Base(strings.ReplaceAll(path, `\`, "/")))
	return strings.TrimSuffix(name, ".exe")
}
