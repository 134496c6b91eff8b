// Package drivemon turns periodic volume snapshots into insertion events.
//
// A Monitor polls a volume.Enumerator, diffs each snapshot against the
// previous one, and hands single-volume insertions to a Handler (in practice
// the launcher spawner). Removals are logged only. Enumeration failures are
// retried on the next tick until the configured consecutive-failure limit is
// reached, at which point Run returns failure.ErrDeviceQuery.
//
// On Linux a udev netlink listener can nudge the loop so insertions are seen
// without waiting for the next tick; polling remains authoritative.
package drivemon
