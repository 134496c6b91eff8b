// Package progress turns worker progress events into user-visible feedback:
// the taskbar button, an optional console bar, and a completion notice.
package progress

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"drivesync/internal/config"
	"drivesync/internal/job"
	"drivesync/internal/logging"
	"drivesync/internal/notifications"
	"drivesync/internal/taskbar"
	"drivesync/internal/worker"
)

const defaultNotifyTimeout = 10 * time.Second

// Sink receives every observed event. The console bar is a Sink.
type Sink interface {
	Update(p worker.Progress)
}

// Option customizes a Reporter.
type Option func(*Reporter)

// WithTaskbar sets the taskbar surface.
func WithTaskbar(bar taskbar.Taskbar) Option {
	return func(r *Reporter) {
		if bar != nil {
			r.bar = bar
		}
	}
}

// WithNotifier sets the completion notifier.
func WithNotifier(n notifications.Notifier) Option {
	return func(r *Reporter) {
		if n != nil {
			r.notifier = n
		}
	}
}

// WithSink adds a sink that sees every event.
func WithSink(s Sink) Option {
	return func(r *Reporter) {
		if s != nil {
			r.sinks = append(r.sinks, s)
		}
	}
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reporter) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithVolume names the drive in the completion notice.
func WithVolume(label, drive string) Option {
	return func(r *Reporter) {
		r.label = label
		r.drive = drive
	}
}

// Reporter maps worker phases onto the taskbar and notifier.
type Reporter struct {
	bar           taskbar.Taskbar
	notifier      notifications.Notifier
	sinks         []Sink
	logger        *slog.Logger
	onCompletion  bool
	notifyTimeout time.Duration
	label         string
	drive         string

	initialized bool
	unsupported bool
	last        worker.Phase
}

// New builds a reporter. Without options the taskbar and notifier are
// no-ops.
func New(cfg *config.Config, opts ...Option) *Reporter {
	r := &Reporter{
		bar:           taskbar.Unsupported{},
		notifier:      notifications.Noop{},
		logger:        logging.NewNop(),
		notifyTimeout: defaultNotifyTimeout,
	}
	if cfg != nil {
		r.onCompletion = cfg.Notifications.OnCompletion
		if s := cfg.Notifications.RequestTimeout; s > 0 {
			r.notifyTimeout = time.Duration(s) * time.Second
		}
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "progress-reporter")
	return r
}

// Consume observes events until the channel closes and returns the last
// event seen.
func (r *Reporter) Consume(ctx context.Context, events <-chan worker.Progress) worker.Progress {
	var last worker.Progress
	for p := range events {
		r.Observe(ctx, p)
		last = p
	}
	return last
}

// Observe applies one event. Taskbar failures are logged, never returned.
func (r *Reporter) Observe(ctx context.Context, p worker.Progress) {
	for _, s := range r.sinks {
		s.Update(p)
	}

	switch p.Phase {
	case worker.Preparing:
		r.init()
		r.taskbar("set mode", r.bar.SetMode(taskbar.Indeterminate))
	case worker.Running:
		r.init()
		if r.last != worker.Running {
			r.taskbar("set mode", r.bar.SetMode(taskbar.Normal))
		}
		r.taskbar("set progress", r.bar.SetProgress(uint64(clamp(p.Percent)), 100))
	case worker.Completed:
		r.taskbar("set mode", r.bar.SetMode(taskbar.NoProgress))
		if r.onCompletion {
			r.notify(ctx, r.completionMessage(p))
		}
	case worker.Cancelled:
		r.taskbar("set mode", r.bar.SetMode(taskbar.Paused))
	case worker.Failed:
		r.taskbar("set mode", r.bar.SetMode(taskbar.Error))
	}
	r.last = p.Phase
}

// Close releases the taskbar.
func (r *Reporter) Close() {
	if !r.initialized {
		return
	}
	r.taskbar("end", r.bar.End())
	r.initialized = false
}

func (r *Reporter) init() {
	if r.initialized || r.unsupported {
		return
	}
	if err := r.bar.Init(); err != nil {
		r.taskbar("init", err)
		return
	}
	r.initialized = true
}

func (r *Reporter) taskbar(op string, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, taskbar.ErrUnsupported) {
		r.unsupported = true
		return
	}
	r.logger.Debug("taskbar update failed",
		logging.String("operation", op),
		logging.Error(err),
	)
}

func (r *Reporter) completionMessage(p worker.Progress) notifications.Message {
	msg := notifications.CompletionMessage(r.label, r.drive)
	if len(p.FailedSubjects) > 0 {
		msg.Title = "Sync finished with errors"
		msg.Body += "\nFailed: " + labels(p.FailedSubjects)
		msg.Priority = "high"
	}
	return msg
}

func (r *Reporter) notify(ctx context.Context, msg notifications.Message) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.notifyTimeout)
	defer cancel()
	if err := r.notifier.Notify(ctx, msg); err != nil {
		logging.WarnWithContext(r.logger, "completion notice not delivered", "notify_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "no completion notice was shown"),
		)
	}
}

func labels(subjects []job.Subject) string {
	names := make([]string, len(subjects))
	for i, s := range subjects {
		names[i] = s.Label()
	}
	return strings.Join(names, ", ")
}

func clamp(percent int) int {
	switch {
	case percent < 0:
		return 0
	case percent > 100:
		return 100
	default:
		return percent
	}
}
