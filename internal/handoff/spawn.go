package handoff

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"drivesync/internal/failure"
)

// Spawner starts the role named by tokens[0] and returns without waiting.
type Spawner interface {
	Spawn(ctx context.Context, tokens []string) error
}

// ProcessSpawner re-executes the current binary with the role subcommand.
type ProcessSpawner struct {
	// Executable defaults to os.Executable().
	Executable string
	// ConfigPath is forwarded as --config when set.
	ConfigPath string
	// Terminal, when set, prefixes the command (for example
	// "x-terminal-emulator -e") so interactive roles get a console.
	Terminal []string
}

// Spawn implements Spawner.
func (s ProcessSpawner) Spawn(ctx context.Context, tokens []string) error {
	argv, err := s.Argv(tokens)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.SysProcAttr = detachedAttr()
	cmd.Env = os.Environ()
	if err := cmd.Start(); err != nil {
		return failure.Wrap(failure.ErrToolMissing, "handoff", "spawn "+RoleOf(tokens), "", err)
	}
	return cmd.Process.Release()
}

// Argv resolves tokens into the full command line used by Spawn.
func (s ProcessSpawner) Argv(tokens []string) ([]string, error) {
	if len(tokens) == 0 {
		return nil, malformed("spawn", "no tokens", nil)
	}
	role := RoleOf(tokens)
	if role == "" {
		return nil, malformed("spawn", "identity is empty", nil)
	}
	exe := strings.TrimSpace(s.Executable)
	if exe == "" {
		resolved, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("resolve executable: %w", err)
		}
		exe = resolved
	}

	argv := make([]string, 0, len(s.Terminal)+len(tokens)+5)
	argv = append(argv, s.Terminal...)
	argv = append(argv, exe)
	if cfg := strings.TrimSpace(s.ConfigPath); cfg != "" {
		argv = append(argv, "--config", cfg)
	}
	argv = append(argv, role, "--")
	argv = append(argv, tokens[1:]...)
	return argv, nil
}

// RoleOf maps token 0 to a subcommand name: "worker.exe" and
// "C:\bin\worker.exe" both resolve to "worker".
func RoleOf(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	identity := strings.TrimSpace(tokens[0])
	if identity == "" {
		return ""
	}
	identity = strings.ReplaceAll(identity, "\\", "/")
	base := filepath.Base(identity)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ToLower(base)
}
