//go:build windows

package fastcopy

import (
	"os/exec"
	"syscall"
)

// configureCommand hands FastCopy the raw command line; its parser expects
// /to="dest" rather than Go's per-argument quoting.
func configureCommand(cmd *exec.Cmd, binary string, c Command) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CmdLine: c.CommandLine(binary)}
}
