package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"

	"drivesync/internal/config"
	"drivesync/internal/deps"
	"drivesync/internal/failure"
	"drivesync/internal/fastcopy"
	"drivesync/internal/job"
	"drivesync/internal/logging"
)

// eventBuffer holds every event a run can emit (preparing, running start,
// one per subject, terminal) so sends never block on a slow reader.
const eventBuffer = job.SubjectCount + 4

// CopyTool performs the per-subject copy and the destination delete.
type CopyTool interface {
	Delete(ctx context.Context, j job.SyncJob, dest string) error
	Sync(ctx context.Context, j job.SyncJob, source, dest string) error
}

// Option customizes a Worker.
type Option func(*Worker)

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithClock replaces the clock used for run timestamps.
func WithClock(clock clockwork.Clock) Option {
	return func(w *Worker) {
		if clock != nil {
			w.clock = clock
		}
	}
}

// WithPreflight replaces the tool availability check run before Preparing.
func WithPreflight(check func() error) Option {
	return func(w *Worker) { w.preflight = check }
}

// WithStrayKiller replaces the fallback that kills tool processes left
// behind after a cancel.
func WithStrayKiller(kill func(ctx context.Context) ([]int32, error)) Option {
	return func(w *Worker) { w.killStray = kill }
}

// Worker runs a single SyncJob.
type Worker struct {
	cfg       *config.Config
	tool      CopyTool
	logger    *slog.Logger
	clock     clockwork.Clock
	preflight func() error
	killStray func(ctx context.Context) ([]int32, error)
	events    chan Progress
	sampler   *logging.ProgressSampler

	mu        sync.Mutex
	phase     Phase
	started   bool
	cancelReq bool
	cancel    context.CancelFunc
}

// New builds a worker for cfg that drives tool.
func New(cfg *config.Config, tool CopyTool, opts ...Option) *Worker {
	w := &Worker{
		cfg:     cfg,
		tool:    tool,
		logger:  logging.NewNop(),
		clock:   clockwork.NewRealClock(),
		events:  make(chan Progress, eventBuffer),
		sampler: logging.NewProgressSampler(25),
	}
	binary := cfg.Tool.Binary
	w.preflight = func() error {
		_, err := deps.RequireTool(binary)
		return err
	}
	w.killStray = func(ctx context.Context) ([]int32, error) {
		return fastcopy.KillStray(ctx, binary)
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = logging.NewComponentLogger(w.logger, "sync-worker")
	return w
}

// Progress returns the event channel. It is closed when Run returns.
func (w *Worker) Progress() <-chan Progress { return w.events }

// Phase returns the current phase.
func (w *Worker) Phase() Phase {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.phase
}

// Cancel stops the run: the running tool process is killed and the worker
// ends in Cancelled once that process has exited. Cancel before Run makes
// Run end immediately; Cancel after a terminal phase has no effect.
func (w *Worker) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.phase.Terminal() {
		return
	}
	w.cancelReq = true
	if w.cancel != nil {
		w.cancel()
	}
}

// Run executes j and blocks until a terminal phase is reached. A Worker
// runs at most once.
func (w *Worker) Run(ctx context.Context, j job.SyncJob) Result {
	result := Result{Started: w.clock.Now(), Total: j.Subjects.Count()}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if !w.begin(cancel) {
		result.Phase = Failed
		result.Err = errors.New("worker already ran")
		result.Finished = w.clock.Now()
		return result
	}
	defer close(w.events)

	logger := w.logger.With(logging.String(logging.FieldDrive, j.Drive))
	finish := func(p Progress) Result {
		w.enter(p)
		result.Phase = p.Phase
		result.Completed = p.Completed
		result.FailedSubjects = p.FailedSubjects
		result.Err = p.Err
		result.Finished = w.clock.Now()
		logFinish(logger, result)
		return result
	}

	if err := j.Validate(); err != nil {
		return finish(Progress{Phase: Failed, Err: failure.Wrap(failure.ErrMalformedArgs, "sync-worker", "validate", "invalid job", err)})
	}

	w.enter(Progress{Phase: Preparing, Total: result.Total})
	if runCtx.Err() != nil {
		return finish(Progress{Phase: Cancelled, Total: result.Total, Err: failure.Wrap(failure.ErrCancelled, "sync-worker", "prepare", "", nil)})
	}
	if w.preflight != nil {
		if err := w.preflight(); err != nil {
			return finish(Progress{Phase: Failed, Total: result.Total, Err: err})
		}
	}

	dest := fastcopy.Destination(j.Drive, w.cfg.Sources.Root)
	if j.DeleteExisting {
		logger.Info("deleting existing destination",
			logging.String(logging.FieldEventType, "delete_existing"),
			logging.String("destination", dest),
		)
		if err := w.tool.Delete(runCtx, j, dest); err != nil {
			switch {
			case w.wasCancelled(runCtx, err):
				return finish(w.cancelled(runCtx, result.Total, 0, nil))
			case errors.Is(err, failure.ErrToolFailed):
				logging.WarnWithContext(logger, "delete of existing destination reported failure", "delete_failed",
					logging.Error(err),
					logging.String("destination", dest),
					logging.String(logging.FieldImpact, "stale files may remain on the drive"),
				)
			default:
				return finish(Progress{Phase: Failed, Total: result.Total, Err: err})
			}
		}
	}

	subjects := j.Subjects.Subjects()
	total := len(subjects)
	if total == 0 {
		return finish(Progress{Phase: Completed, Percent: 100})
	}

	w.enter(Progress{Phase: Running, Total: total})
	var failed []job.Subject
	for i, subject := range subjects {
		if runCtx.Err() != nil {
			return finish(w.cancelled(runCtx, total, i, failed))
		}
		source := w.cfg.SourceFolder(subject)
		logger.Debug("syncing subject",
			logging.String(logging.FieldSubject, subject.Key()),
			logging.String("source", source),
		)
		if err := w.tool.Sync(runCtx, j, source, dest); err != nil {
			switch {
			case w.wasCancelled(runCtx, err):
				return finish(w.cancelled(runCtx, total, i, failed))
			case errors.Is(err, failure.ErrToolFailed):
				failed = append(failed, subject)
				logging.WarnWithContext(logger, "subject sync reported failure", "subject_failed",
					logging.Error(err),
					logging.String(logging.FieldSubject, subject.Key()),
					logging.String(logging.FieldImpact, "subject may be incomplete on the drive"),
				)
				if w.cfg.Tool.AbortOnFailure {
					return finish(Progress{Phase: Failed, Percent: percent(i, total), Completed: i, Total: total,
						FailedSubjects: failed, Err: failure.Wrap(failure.ErrAborted, "sync-worker", "run", "stopped at "+subject.Key(), err)})
				}
			default:
				return finish(Progress{Phase: Failed, Percent: percent(i, total), Completed: i, Total: total,
					FailedSubjects: failed, Err: err})
			}
		}
		done := i + 1
		p := Progress{
			Phase:          Running,
			Percent:        percent(done, total),
			Subject:        subject,
			Completed:      done,
			Total:          total,
			FailedSubjects: append([]job.Subject(nil), failed...),
		}
		w.enter(p)
		if w.sampler.ShouldLog(p.Percent, p.Phase.String()) {
			logger.Info("sync progress",
				logging.String(logging.FieldEventType, "sync_progress"),
				logging.Int("percent", p.Percent),
				logging.String(logging.FieldSubject, subject.Key()),
			)
		}
	}

	final := Progress{Phase: Completed, Percent: 100, Completed: total, Total: total, FailedSubjects: failed}
	if len(failed) > 0 {
		final.Err = failure.Wrap(failure.ErrToolFailed, "sync-worker", "run", partialMessage(failed), nil)
	}
	return finish(final)
}

func (w *Worker) begin(cancel context.CancelFunc) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return false
	}
	w.started = true
	w.cancel = cancel
	if w.cancelReq {
		cancel()
	}
	return true
}

// enter records and publishes p unless the worker is already terminal.
func (w *Worker) enter(p Progress) {
	w.mu.Lock()
	if w.phase.Terminal() {
		w.mu.Unlock()
		return
	}
	w.phase = p.Phase
	w.mu.Unlock()
	w.events <- p
}

func (w *Worker) wasCancelled(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, failure.ErrCancelled)
}

// cancelled finishes cleanup for a cancel: the tool call has returned, so
// its process has exited; any copy it spawned is killed as a fallback.
func (w *Worker) cancelled(ctx context.Context, total, done int, failed []job.Subject) Progress {
	if w.killStray != nil {
		if pids, err := w.killStray(context.WithoutCancel(ctx)); err != nil {
			w.logger.Debug("stray tool scan failed", logging.Error(err))
		} else if len(pids) > 0 {
			w.logger.Info("killed leftover tool processes",
				logging.String(logging.FieldEventType, "tool_killed"),
				logging.Int("count", len(pids)),
			)
		}
	}
	return Progress{
		Phase:          Cancelled,
		Percent:        percent(done, total),
		Completed:      done,
		Total:          total,
		FailedSubjects: failed,
		Err:            failure.Wrap(failure.ErrCancelled, "sync-worker", "run", "", nil),
	}
}

func partialMessage(failed []job.Subject) string {
	return "failed subjects: " + job.MaskOf(failed...).String()
}

func logFinish(logger *slog.Logger, r Result) {
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "sync_"+r.Phase.String()),
		logging.String("phase", r.Phase.String()),
		logging.Int("total", r.Total),
		logging.Duration("duration", r.Duration()),
	}
	if len(r.FailedSubjects) > 0 {
		attrs = append(attrs, logging.String("failed_subjects", job.MaskOf(r.FailedSubjects...).String()))
	}
	switch r.Phase {
	case Completed:
		logger.Info("sync finished", logging.Args(attrs...)...)
	case Cancelled:
		logger.Info("sync cancelled", logging.Args(attrs...)...)
	default:
		attrs = append(attrs, logging.Error(r.Err))
		logging.ErrorWithContext(logger, "sync failed", "sync_failed", attrs...)
	}
}
