package instance

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/gofrs/flock"
)

// ErrHeld reports that another process holds the role lock. Errors returned
// by Acquire for this case are *HeldError values that match ErrHeld.
var ErrHeld = errors.New("instance already running")

// HeldError identifies the role whose lock is held and, when the pid file
// was readable, the owner's PID.
type HeldError struct {
	Role string
	PID  int32
}

func (e *HeldError) Error() string {
	if e.PID > 0 {
		return fmt.Sprintf("%s: %s (pid %d)", ErrHeld, e.Role, e.PID)
	}
	return fmt.Sprintf("%s: %s", ErrHeld, e.Role)
}

func (e *HeldError) Is(target error) bool { return target == ErrHeld }

// Lock is an acquired role lock.
type Lock struct {
	role    string
	path    string
	pidPath string
	fl      *flock.Flock
	once    sync.Once
	err     error
}

// Acquire tries once to take the lock for role under dir. It never blocks.
func Acquire(ctx context.Context, dir, role string) (*Lock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateRole(role); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}

	path, pidPath := lockPaths(dir, role)
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire %s lock: %w", role, err)
	}
	if !ok {
		return nil, &HeldError{Role: role, PID: readPID(pidPath)}
	}

	pid := strconv.Itoa(os.Getpid()) + "\n"
	if err := os.WriteFile(pidPath, []byte(pid), 0o644); err != nil {
		_ = fl.Unlock()
		return nil, fmt.Errorf("write %s pid file: %w", role, err)
	}
	return &Lock{role: role, path: path, pidPath: pidPath, fl: fl}, nil
}

// Role returns the role this lock guards.
func (l *Lock) Role() string { return l.role }

// Path returns the lock file path.
func (l *Lock) Path() string { return l.path }

// Release removes the pid file and unlocks. Safe to call more than once.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	l.once.Do(func() {
		if err := os.Remove(l.pidPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			l.err = fmt.Errorf("remove pid file: %w", err)
		}
		if err := l.fl.Unlock(); err != nil {
			l.err = errors.Join(l.err, fmt.Errorf("release %s lock: %w", l.role, err))
		}
	})
	return l.err
}

func lockPaths(dir, role string) (string, string) {
	return filepath.Join(dir, role+".lock"), filepath.Join(dir, role+".pid")
}

func validateRole(role string) error {
	if strings.TrimSpace(role) == "" {
		return errors.New("instance role is empty")
	}
	if strings.ContainsAny(role, `/\:`) || role == "." || role == ".." {
		return fmt.Errorf("invalid instance role %q", role)
	}
	return nil
}

// readPID returns 0 when the pid file is missing or unparsable.
func readPID(path string) int32 {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	pid, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 32)
	if err != nil || pid <= 0 {
		return 0
	}
	return int32(pid)
}
