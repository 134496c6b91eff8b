// Package config loads, normalizes, and validates drivesync configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and resolves per-subject source folders. The
// Config type centralizes every knob the roles need and also serves dotted-key
// lookups for `drivesync config get`.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
