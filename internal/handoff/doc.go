// Package handoff carries work between the short-lived drivesync roles.
//
// A role hands off by spawning the next one with a flat argument vector.
// Two positional schemas exist: the letter-only launcher handoff
// [identity, drive] and the full worker handoff
// [identity, drive, b1..b11, mode, delete, extra]. The schema version is
// implied by arity; decoders validate every position and reject anything
// else with failure.ErrMalformedArgs.
package handoff
