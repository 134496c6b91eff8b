// Package logging assembles the structured slog loggers shared by every
// drivesync role.
//
// It owns the console and JSON handlers, routes output to the terminal and to
// a size-rotated file per role, and exposes helpers that keep field names
// consistent (component, event_type, error_hint, impact, role, drive). Roles
// attach their identity to the context with WithRole/WithDrive/WithRunID so
// lines from the launcher and worker of one insertion can be correlated.
//
// Prefer these constructors over hand-rolled slog setup; tests and wiring that
// cannot fail should use NewNop.
package logging
