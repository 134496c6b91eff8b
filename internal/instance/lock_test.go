package instance_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"drivesync/internal/failure"
	"drivesync/internal/instance"
	"drivesync/internal/logging"
)

func TestAcquireExactlyOneWinsWithoutBlocking(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	const contenders = 8
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		locks  []*instance.Lock
		helds  int
		others []error
	)
	start := time.Now()
	for range contenders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lock, err := instance.Acquire(ctx, dir, "worker")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				locks = append(locks, lock)
			case errors.Is(err, instance.ErrHeld):
				helds++
			default:
				others = append(others, err)
			}
		}()
	}
	wg.Wait()
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("Acquire appears to block: took %v", elapsed)
	}
	if len(others) > 0 {
		t.Fatalf("unexpected errors: %v", others)
	}
	if len(locks) != 1 || helds != contenders-1 {
		t.Fatalf("expected one winner and %d held errors, got %d winners and %d held", contenders-1, len(locks), helds)
	}
	if err := locks[0].Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
}

func TestHeldErrorCarriesOwnerPID(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := instance.Acquire(ctx, dir, "launcher")
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	t.Cleanup(func() { _ = first.Release() })

	data, err := os.ReadFile(filepath.Join(dir, "launcher.pid"))
	if err != nil {
		t.Fatalf("read pid file: %v", err)
	}
	if strings.TrimSpace(string(data)) != strconv.Itoa(os.Getpid()) {
		t.Fatalf("unexpected pid file contents %q", data)
	}

	_, err = instance.Acquire(ctx, dir, "launcher")
	var held *instance.HeldError
	if !errors.As(err, &held) {
		t.Fatalf("expected HeldError, got %v", err)
	}
	if held.Role != "launcher" || held.PID != int32(os.Getpid()) {
		t.Fatalf("unexpected held error %+v", held)
	}
}

func TestDifferentRolesDoNotCollide(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	var locks []*instance.Lock
	for _, role := range []string{"monitor", "launcher", "worker", "settings"} {
		lock, err := instance.Acquire(ctx, dir, role)
		if err != nil {
			t.Fatalf("Acquire(%s): %v", role, err)
		}
		locks = append(locks, lock)
	}
	for _, lock := range locks {
		if err := lock.Release(); err != nil {
			t.Fatalf("Release(%s): %v", lock.Role(), err)
		}
	}
}

func TestReleaseIsIdempotentAndFreesLock(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	lock, err := instance.Acquire(ctx, dir, "monitor")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("first Release: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("second Release: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "monitor.pid")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected pid file removed, stat err=%v", err)
	}

	again, err := instance.Acquire(ctx, dir, "monitor")
	if err != nil {
		t.Fatalf("re-Acquire after release: %v", err)
	}
	_ = again.Release()

	var nilLock *instance.Lock
	if err := nilLock.Release(); err != nil {
		t.Fatalf("nil Release: %v", err)
	}
}

func TestAcquireRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	for _, role := range []string{"", "  ", "../etc", `a\b`, "C:"} {
		if _, err := instance.Acquire(context.Background(), dir, role); err == nil {
			t.Fatalf("expected error for role %q", role)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := instance.Acquire(ctx, dir, "worker"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type stubFinder struct {
	pid   int32
	found bool
	seen  *instance.HeldError
}

func (s *stubFinder) FindOwner(_ context.Context, held *instance.HeldError) (int32, bool) {
	s.seen = held
	return s.pid, s.found
}

type stubForegrounder struct {
	pids []int32
	err  error
}

func (s *stubForegrounder) Foreground(_ context.Context, pid int32) error {
	s.pids = append(s.pids, pid)
	return s.err
}

func TestGuardEnterRedirectsToOwner(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	holder, err := instance.Acquire(ctx, dir, "launcher")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	t.Cleanup(func() { _ = holder.Release() })

	finder := &stubFinder{pid: 4242, found: true}
	fg := &stubForegrounder{err: instance.ErrForegroundUnsupported}
	guard := &instance.Guard{Dir: dir, Owners: finder, Foregrounder: fg, Logger: logging.NewNop()}

	lock, err := guard.Enter(ctx, "launcher")
	if lock != nil {
		t.Fatal("expected no lock while another instance holds it")
	}
	if !errors.Is(err, failure.ErrRedirected) || failure.ExitCode(err) != failure.ExitOK {
		t.Fatalf("expected redirect with exit 0, got %v", err)
	}
	if finder.seen == nil || finder.seen.Role != "launcher" {
		t.Fatalf("finder not consulted with held error: %+v", finder.seen)
	}
	if len(fg.pids) != 1 || fg.pids[0] != 4242 {
		t.Fatalf("expected foreground of 4242, got %v", fg.pids)
	}
}

func TestGuardEnterWithoutOwnerIsBenign(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	holder, err := instance.Acquire(ctx, dir, "worker")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	t.Cleanup(func() { _ = holder.Release() })

	fg := &stubForegrounder{}
	guard := &instance.Guard{Dir: dir, Owners: &stubFinder{}, Foregrounder: fg}
	_, err = guard.Enter(ctx, "worker")
	if !errors.Is(err, failure.ErrRedirected) {
		t.Fatalf("expected redirect, got %v", err)
	}
	if len(fg.pids) != 0 {
		t.Fatalf("foregrounder should not run without an owner, got %v", fg.pids)
	}
}

func TestGuardEnterAcquiresFreeLock(t *testing.T) {
	guard := instance.NewGuard(t.TempDir(), nil)
	lock, err := guard.Enter(context.Background(), "monitor")
	if err != nil {
		t.Fatalf("Enter: %v", err)
	}
	if lock.Role() != "monitor" {
		t.Fatalf("unexpected role %q", lock.Role())
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
}
