// Package fastcopy drives the FastCopy command-line tool (fcp.exe).
//
// Command renders one invocation (sync a subject folder onto the drive, or
// delete the destination tree) both as an argv slice and as the raw Windows
// command line FastCopy parses itself. Runner executes invocations through
// an Executor, blocks until the tool exits, and classifies the outcome with
// the failure markers: a tool that cannot be started is ErrToolMissing, a
// non-zero exit is ErrToolFailed, and a run stopped through its context is
// ErrCancelled.
package fastcopy
