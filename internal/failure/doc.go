// Package failure classifies errors raised by the drivesync roles.
//
// Each role is a disposable process: errors are recovered locally when
// possible and otherwise surfaced by terminating with a defined exit code.
// Components tag errors with one of the sentinel markers via Wrap so callers
// (and tests) can tell transient, fatal, and cancellation paths apart without
// string matching. ExitCode is the single mapping from marker to status.
package failure
