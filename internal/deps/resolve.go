package deps

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// executable is swapped in tests.
var executable = os.Executable

// ResolveTool finds binary the way a portable install expects: an explicit
// path or a PATH lookup first, then a copy sitting next to the drivesync
// executable.
func ResolveTool(binary string) (string, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return "", errors.New("command not configured")
	}
	if resolved, err := exec.LookPath(binary); err == nil {
		return resolved, nil
	}
	if !strings.ContainsAny(binary, `/\`) {
		if candidate, ok := sidecarCandidate(binary); ok {
			if info, err := os.Stat(candidate); err == nil && isExecutable(info) {
				return candidate, nil
			}
		}
	}
	return "", fmt.Errorf("binary %q not found", binary)
}

func sidecarCandidate(name string) (string, bool) {
	self, err := executable()
	if err != nil || self == "" {
		return "", false
	}
	if runtime.GOOS == "windows" && filepath.Ext(name) == "" {
		name += ".exe"
	}
	return filepath.Join(filepath.Dir(self), name), true
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
