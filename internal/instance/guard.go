package instance

import (
	"context"
	"errors"
	"log/slog"

	"drivesync/internal/failure"
	"drivesync/internal/logging"
)

// ErrForegroundUnsupported is returned where windows cannot be raised.
var ErrForegroundUnsupported = errors.New("foregrounding is not supported on this platform")

// Foregrounder restores and focuses the window of a running process.
type Foregrounder interface {
	Foreground(ctx context.Context, pid int32) error
}

// Guard applies the single-instance redirect policy for a role.
type Guard struct {
	Dir          string
	Owners       OwnerFinder
	Foregrounder Foregrounder
	Logger       *slog.Logger
}

// NewGuard returns a Guard using the process table and the platform
// foregrounder.
func NewGuard(dir string, logger *slog.Logger) *Guard {
	return &Guard{
		Dir:          dir,
		Owners:       ProcessOwnerFinder{},
		Foregrounder: platformForegrounder{},
		Logger:       logger,
	}
}

// Enter acquires the role lock. When another instance holds it, that
// instance is brought forward and the returned error matches
// failure.ErrRedirected; callers should exit successfully.
func (g *Guard) Enter(ctx context.Context, role string) (*Lock, error) {
	logger := logging.NewComponentLogger(g.Logger, "instance")
	lock, err := Acquire(ctx, g.Dir, role)
	if err == nil {
		logger.Debug("instance lock acquired",
			logging.String(logging.FieldRole, role),
			logging.String("lock", lock.Path()),
		)
		return lock, nil
	}

	var held *HeldError
	if !errors.As(err, &held) {
		return nil, err
	}

	if g.Owners == nil {
		return nil, failure.Wrap(failure.ErrRedirected, "instance", role, "lock held", err)
	}
	pid, ok := g.Owners.FindOwner(ctx, held)
	if !ok {
		logger.Debug("role lock held but no owner found; exiting",
			logging.String(logging.FieldRole, role),
		)
		return nil, failure.Wrap(failure.ErrRedirected, "instance", role, "owner not found", err)
	}

	logger.Info("role already running; bringing it forward",
		logging.String(logging.FieldEventType, "instance_redirect"),
		logging.String(logging.FieldRole, role),
		logging.Int64("owner_pid", int64(pid)),
	)
	if g.Foregrounder != nil {
		if ferr := g.Foregrounder.Foreground(ctx, pid); ferr != nil {
			logger.Debug("could not foreground running instance",
				logging.Error(ferr),
				logging.Int64("owner_pid", int64(pid)),
			)
		}
	}
	return nil, failure.Wrap(failure.ErrRedirected, "instance", role, "foregrounded running instance", err)
}
