package launcher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"drivesync/internal/config"
	"drivesync/internal/failure"
	"drivesync/internal/handoff"
	"drivesync/internal/logging"
)

// WorkerIdentity and MonitorIdentity are token 0 of the handoffs the
// launcher produces.
const (
	WorkerIdentity  = "worker"
	MonitorIdentity = "monitor"
)

// Asker collects a Selection interactively.
type Asker interface {
	Ask(ctx context.Context, info DriveInfo) (Selection, error)
}

// Launcher turns a drive handoff into a worker handoff.
type Launcher struct {
	Spawner   handoff.Spawner
	Describer Describer
	Asker     Asker
	Clock     clockwork.Clock
	Logger    *slog.Logger
}

// New wires a launcher. asker may be nil when the selection always comes
// from flags.
func New(spawner handoff.Spawner, describer Describer, asker Asker, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Launcher{
		Spawner:   spawner,
		Describer: describer,
		Asker:     asker,
		Clock:     clockwork.NewRealClock(),
		Logger:    logging.NewComponentLogger(logger, "launcher"),
	}
}

// Run handles one inserted drive. With sel nil the Asker is consulted; a
// timed out or declined prompt returns nil. The worker is spawned and Run
// returns without waiting for it.
func (l *Launcher) Run(ctx context.Context, drive string, sel *Selection) error {
	drive = handoff.NormalizeDrive(drive)
	if err := handoff.ValidateDrive(drive); err != nil {
		return failure.Wrap(failure.ErrMalformedArgs, "launcher", "drive", "", err)
	}
	logger := l.Logger.With(logging.String(logging.FieldDrive, drive))

	info := l.Describer.Describe(ctx, drive)
	logger.Info("drive ready",
		logging.String(logging.FieldEventType, "launcher_drive"),
		logging.String("title", info.Title()),
		logging.String("space", info.Space()),
	)

	var chosen Selection
	if sel != nil {
		chosen = *sel
	} else {
		if l.Asker == nil {
			return failure.Wrap(failure.ErrMalformedArgs, "launcher", "select", "no selection flags and no terminal to prompt on", nil)
		}
		answer, err := l.Asker.Ask(ctx, info)
		switch {
		case errors.Is(err, ErrPromptTimeout):
			logger.Info("prompt timed out", logging.String(logging.FieldEventType, "launcher_timeout"))
			return nil
		case errors.Is(err, ErrDeclined):
			logger.Info("prompt dismissed", logging.String(logging.FieldEventType, "launcher_declined"))
			return nil
		case err != nil:
			return err
		}
		chosen = answer
	}

	j, err := chosen.Job(drive, l.now())
	if err != nil {
		return failure.Wrap(failure.ErrMalformedArgs, "launcher", "build job", "", err)
	}
	tokens, err := handoff.EncodeJob(WorkerIdentity, j)
	if err != nil {
		return err
	}
	if err := l.Spawner.Spawn(ctx, tokens); err != nil {
		return err
	}
	logger.Info("worker started",
		logging.String(logging.FieldEventType, "worker_spawned"),
		logging.String("subjects", j.Subjects.String()),
		logging.String("mode", j.Mode.String()),
		logging.Bool("delete_existing", j.DeleteExisting),
	)
	return nil
}

// AutoStart spawns the monitor when launcher.auto_start is set. It reports
// whether a monitor was started.
func AutoStart(ctx context.Context, cfg *config.Config, spawner handoff.Spawner) (bool, error) {
	if cfg == nil || !cfg.Launcher.AutoStart {
		return false, nil
	}
	if err := spawner.Spawn(ctx, []string{MonitorIdentity}); err != nil {
		return false, err
	}
	return true, nil
}

func (l *Launcher) now() time.Time {
	if l.Clock == nil {
		return time.Now()
	}
	return l.Clock.Now()
}
