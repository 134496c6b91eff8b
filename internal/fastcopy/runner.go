package fastcopy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"drivesync/internal/failure"
	"drivesync/internal/job"
	"drivesync/internal/logging"
)

// Option configures the runner.
type Option func(*Runner)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(r *Runner) {
		if exec != nil {
			r.exec = exec
		}
	}
}

// WithLogger sets the logger used for tool output.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Runner executes FastCopy invocations one at a time.
type Runner struct {
	binary string
	exec   Executor
	logger *slog.Logger
}

// ExitError reports a FastCopy run that finished with a non-zero status.
type ExitError struct {
	Verb Verb
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("fastcopy %s exited with status %d", e.Verb, e.Code)
}

// New constructs a runner for binary.
func New(binary string, opts ...Option) (*Runner, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("fastcopy binary required")
	}
	r := &Runner{
		binary: binary,
		exec:   commandExecutor{},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "fastcopy")
	return r, nil
}

// Binary returns the configured tool path or name.
func (r *Runner) Binary() string { return r.binary }

// Sync mirrors one subject folder onto the drive destination.
func (r *Runner) Sync(ctx context.Context, j job.SyncJob, source, dest string) error {
	return r.run(ctx, SyncCommand(j, source, dest))
}

// Delete removes the destination tree before a fresh copy.
func (r *Runner) Delete(ctx context.Context, j job.SyncJob, dest string) error {
	return r.run(ctx, DeleteCommand(j, dest))
}

func (r *Runner) run(ctx context.Context, cmd Command) error {
	if err := ctx.Err(); err != nil {
		return failure.Wrap(failure.ErrCancelled, "fastcopy", string(cmd.Verb), "not started", err)
	}
	r.logger.Debug("running fastcopy",
		logging.String("command", cmd.CommandLine(r.binary)),
	)
	err := r.exec.Run(ctx, r.binary, cmd, func(line string) {
		r.logger.Debug("fastcopy output", logging.String("line", line))
	})
	return r.classify(ctx, cmd, err)
}

func (r *Runner) classify(ctx context.Context, cmd Command, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, failure.ErrToolMissing) {
		return err
	}
	if ctx.Err() != nil {
		return failure.Wrap(failure.ErrCancelled, "fastcopy", string(cmd.Verb), "killed", ctx.Err())
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return failure.Wrap(failure.ErrToolFailed, "fastcopy", string(cmd.Verb), cmd.Source,
			&ExitError{Verb: cmd.Verb, Code: exitErr.ExitCode()})
	}
	return failure.Wrap(failure.ErrToolFailed, "fastcopy", string(cmd.Verb), cmd.Source, err)
}
