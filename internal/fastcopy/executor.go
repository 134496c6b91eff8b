package fastcopy

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"sync"
	"time"

	"drivesync/internal/failure"
)

// waitDelay bounds how long Wait keeps reading output after the tool is
// killed, in case a child process still holds the pipe.
const waitDelay = 5 * time.Second

// Executor abstracts command execution for testability. Run blocks until
// the process exits; cancelling ctx must kill the process.
type Executor interface {
	Run(ctx context.Context, binary string, cmd Command, onOutput func(string)) error
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, c Command, onOutput func(string)) error {
	cmd := exec.CommandContext(ctx, binary, c.Args()...) //nolint:gosec
	configureCommand(cmd, binary, c)
	out := &lineWriter{emit: onOutput}
	cmd.Stdout = out
	cmd.Stderr = out
	cmd.WaitDelay = waitDelay

	if err := cmd.Start(); err != nil {
		return failure.Wrap(failure.ErrToolMissing, "fastcopy", "start", binary, err)
	}
	err := cmd.Wait()
	out.flush()
	if err != nil && !errors.Is(err, exec.ErrWaitDelay) {
		return err
	}
	return nil
}

// lineWriter splits process output into lines for onOutput.
type lineWriter struct {
	mu   sync.Mutex
	buf  bytes.Buffer
	emit func(string)
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// Incomplete line: keep it for the next write.
			w.buf.Reset()
			w.buf.WriteString(line)
			break
		}
		w.send(line)
	}
	return len(p), nil
}

func (w *lineWriter) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf.Len() > 0 {
		w.send(w.buf.String())
		w.buf.Reset()
	}
}

func (w *lineWriter) send(line string) {
	line = strings.TrimRight(line, "\r\n")
	if line != "" && w.emit != nil {
		w.emit(line)
	}
}
