package fastcopy_test

import (
	"context"
	"errors"
	"testing"

	"drivesync/internal/failure"
	"drivesync/internal/fastcopy"
	"drivesync/internal/job"
)

type stubExecutor struct {
	lines []string
	err   error
	calls []fastcopy.Command
}

func (s *stubExecutor) Run(_ context.Context, _ string, cmd fastcopy.Command, onOutput func(string)) error {
	s.calls = append(s.calls, cmd)
	for _, line := range s.lines {
		onOutput(line)
	}
	return s.err
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := fastcopy.New("  "); err == nil {
		t.Fatal("expected error for empty binary")
	}
}

func TestRunnerSyncAndDelete(t *testing.T) {
	exec := &stubExecutor{lines: []string{"TotalRead = 1 MB"}}
	runner, err := fastcopy.New("fcp.exe", fastcopy.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	j := sampleJob(job.SyncDefault, "")
	if err := runner.Delete(context.Background(), j, `E:\share\`); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := runner.Sync(context.Background(), j, "/src/math", `E:\share\`); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(exec.calls) != 2 || exec.calls[0].Verb != fastcopy.VerbDelete || exec.calls[1].Verb != fastcopy.VerbSync {
		t.Fatalf("unexpected calls %+v", exec.calls)
	}
	if runner.Binary() != "fcp.exe" {
		t.Fatalf("unexpected binary %q", runner.Binary())
	}
}

func TestRunnerClassifiesErrors(t *testing.T) {
	j := sampleJob(job.SyncDefault, "")

	missing := failure.Wrap(failure.ErrToolMissing, "fastcopy", "start", "fcp.exe", errors.New("not found"))
	runner, _ := fastcopy.New("fcp.exe", fastcopy.WithExecutor(&stubExecutor{err: missing}))
	if err := runner.Sync(context.Background(), j, "/a", "/b/"); !errors.Is(err, failure.ErrToolMissing) {
		t.Fatalf("expected ErrToolMissing, got %v", err)
	}

	runner, _ = fastcopy.New("fcp.exe", fastcopy.WithExecutor(&stubExecutor{err: errors.New("exit status 3")}))
	if err := runner.Sync(context.Background(), j, "/a", "/b/"); !errors.Is(err, failure.ErrToolFailed) {
		t.Fatalf("expected ErrToolFailed, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	exec := &stubExecutor{}
	runner, _ = fastcopy.New("fcp.exe", fastcopy.WithExecutor(exec))
	if err := runner.Sync(ctx, j, "/a", "/b/"); !errors.Is(err, failure.ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if len(exec.calls) != 0 {
		t.Fatal("tool must not start once cancelled")
	}
}
