// Package instance keeps at most one process per role alive.
//
// Acquire takes a non-blocking advisory file lock named after the role under
// the state directory and records the holder's PID next to it. Guard adds
// the redirect policy used by every role: when the lock is held, the running
// owner is located and brought to the foreground, and the caller exits with
// failure.ErrRedirected (exit status 0).
package instance
