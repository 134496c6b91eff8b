// Package logs reads the per-role log files written by internal/logging.
//
// Last returns the tail of a file with bounded memory. Follower polls a file
// from an offset and survives lumberjack rotation: when the file shrinks
// below the offset it is read again from the start.
package logs
