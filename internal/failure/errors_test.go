package failure_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"drivesync/internal/failure"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := failure.Wrap(failure.ErrToolMissing, "worker", "prepare", "fcp.exe not found", base)
	if !errors.Is(err, failure.ErrToolMissing) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"worker", "prepare", "fcp.exe not found"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := failure.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, failure.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestExitCodeMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, failure.ExitOK},
		{"cancel", failure.Wrap(failure.ErrCancelled, "worker", "", "", nil), failure.ExitOK},
		{"redirect", fmt.Errorf("launcher: %w", failure.ErrRedirected), failure.ExitOK},
		{"malformed", failure.Wrap(failure.ErrMalformedArgs, "handoff", "decode", "arity", nil), failure.ExitMalformed},
		{"device", failure.Wrap(failure.ErrDeviceQuery, "volume", "", "", errors.New("io")), failure.ExitDeviceQuery},
		{"tool missing", failure.Wrap(failure.ErrToolMissing, "", "", "", nil), failure.ExitToolMissing},
		{"partial", failure.Wrap(failure.ErrToolFailed, "", "", "", nil), failure.ExitPartial},
		{"aborted", failure.Wrap(failure.ErrAborted, "worker", "run", "", failure.Wrap(failure.ErrToolFailed, "", "", "", nil)), failure.ExitAborted},
		{"config", failure.Wrap(failure.ErrConfiguration, "", "", "", nil), failure.ExitConfiguration},
		{"other", errors.New("plain"), failure.ExitUnknown},
	}
	for _, tc := range cases {
		if got := failure.ExitCode(tc.err); got != tc.want {
			t.Fatalf("%s: ExitCode=%d want %d", tc.name, got, tc.want)
		}
	}
}

func TestBenign(t *testing.T) {
	if !failure.Benign(failure.ErrCancelled) || !failure.Benign(failure.ErrRedirected) {
		t.Fatal("expected cancel and redirect to be benign")
	}
	if failure.Benign(failure.ErrDeviceQuery) {
		t.Fatal("device query failure must not be benign")
	}
}
