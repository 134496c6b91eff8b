package drivemon

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"drivesync/internal/config"
	"drivesync/internal/failure"
	"drivesync/internal/logging"
	"drivesync/internal/volume"
)

const defaultPollInterval = time.Second

// Handler reacts to a newly inserted volume.
type Handler interface {
	VolumeInserted(ctx context.Context, v volume.Volume) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, v volume.Volume) error

func (f HandlerFunc) VolumeInserted(ctx context.Context, v volume.Volume) error {
	return f(ctx, v)
}

// Option customizes a Monitor.
type Option func(*Monitor)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(clock clockwork.Clock) Option {
	return func(m *Monitor) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// WithWakeup makes the loop poll as soon as a value arrives on ch.
func WithWakeup(ch <-chan struct{}) Option {
	return func(m *Monitor) { m.wake = ch }
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Monitor) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Monitor polls for volume changes and reports insertions to its Handler.
type Monitor struct {
	enum        volume.Enumerator
	handler     Handler
	interval    time.Duration
	maxFailures int
	clock       clockwork.Clock
	wake        <-chan struct{}
	logger      *slog.Logger
}

// New builds a monitor from the [monitor] section of cfg.
func New(cfg *config.Config, enum volume.Enumerator, handler Handler, opts ...Option) *Monitor {
	m := &Monitor{
		enum:        enum,
		handler:     handler,
		interval:    defaultPollInterval,
		maxFailures: 1,
		clock:       clockwork.NewRealClock(),
		logger:      logging.NewNop(),
	}
	if cfg != nil {
		if cfg.Monitor.PollIntervalMS > 0 {
			m.interval = time.Duration(cfg.Monitor.PollIntervalMS) * time.Millisecond
		}
		if cfg.Monitor.MaxQueryFailures > 0 {
			m.maxFailures = cfg.Monitor.MaxQueryFailures
		}
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.NewComponentLogger(m.logger, "drive-monitor")
	return m
}

// Run blocks until ctx is cancelled (returning nil) or enumeration fails
// maxFailures times in a row (returning an error marked ErrDeviceQuery).
// The first successful snapshot is the baseline and never triggers.
func (m *Monitor) Run(ctx context.Context) error {
	if m == nil || m.enum == nil {
		return errors.New("drive monitor unavailable")
	}

	m.logger.Info("drive monitor started",
		logging.String(logging.FieldEventType, "monitor_started"),
		logging.Duration("poll_interval", m.interval),
		logging.Int("max_query_failures", m.maxFailures),
	)

	var (
		prev     volume.Snapshot
		baseline bool
		failures int
	)

	ticker := m.clock.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		cur, err := m.enum.Snapshot(ctx)
		switch {
		case ctx.Err() != nil:
			m.stopped()
			return nil
		case err != nil:
			failures++
			if failures >= m.maxFailures {
				logging.ErrorWithContext(m.logger, "volume enumeration failed; giving up", "enumeration_fatal",
					logging.Error(err),
					logging.Int("consecutive_failures", failures),
					logging.String(logging.FieldErrorHint, "check that the volume table is readable by this user"),
					logging.String(logging.FieldImpact, "drive insertions are no longer detected"),
				)
				return failure.Wrap(failure.ErrDeviceQuery, "drive-monitor", "poll", "consecutive enumeration failures", err)
			}
			logging.WarnWithContext(m.logger, "volume enumeration failed; retrying next tick", "enumeration_retry",
				logging.Error(err),
				logging.Int("consecutive_failures", failures),
				logging.Int("max_query_failures", m.maxFailures),
			)
		case !baseline:
			failures = 0
			baseline = true
			prev = cur
			m.logger.Debug("baseline snapshot captured",
				logging.Int("volumes", cur.Len()),
				logging.Strings("ids", cur.IDs()),
			)
		default:
			failures = 0
			m.observe(ctx, prev, cur)
			prev = cur
		}

		select {
		case <-ctx.Done():
			m.stopped()
			return nil
		case <-ticker.Chan():
		case <-m.wake:
			m.logger.Debug("wake-up received; polling early")
		}
	}
}

func (m *Monitor) observe(ctx context.Context, prev, cur volume.Snapshot) {
	event := Diff(prev, cur)
	switch event.Kind {
	case Removed:
		m.logger.Info("volume removed",
			logging.String(logging.FieldEventType, "volume_removed"),
			logging.String(logging.FieldDrive, event.ID),
		)
	case Inserted:
		v, _ := cur.Lookup(event.ID)
		m.logger.Info("volume inserted",
			logging.String(logging.FieldEventType, "volume_inserted"),
			logging.String(logging.FieldDrive, v.ID),
			logging.String("kind", v.Kind.String()),
			logging.String("label", v.Label),
		)
		if m.handler == nil {
			return
		}
		if err := m.handler.VolumeInserted(ctx, v); err != nil {
			logging.WarnWithContext(m.logger, "insertion handler failed", "insert_handler_failed",
				logging.Error(err),
				logging.String(logging.FieldDrive, v.ID),
				logging.String(logging.FieldErrorHint, "check that the launcher role can be started"),
				logging.String(logging.FieldImpact, "no launcher shown for this drive"),
			)
		}
	default:
		if prev.Len() != cur.Len() {
			m.logger.Debug("volume set changed without a single insertion",
				logging.Int("previous", prev.Len()),
				logging.Int("current", cur.Len()),
			)
		}
	}
}

func (m *Monitor) stopped() {
	m.logger.Info("drive monitor stopped",
		logging.String(logging.FieldEventType, "monitor_stopped"),
	)
}
