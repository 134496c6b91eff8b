package drivemon

import "drivesync/internal/volume"

// EventKind classifies the difference between two snapshots.
type EventKind int

const (
	Unchanged EventKind = iota
	Inserted
	Removed
)

func (k EventKind) String() string {
	switch k {
	case Inserted:
		return "inserted"
	case Removed:
		return "removed"
	default:
		return "unchanged"
	}
}

// Event is derived from a pair of snapshots and never persisted. ID is empty
// for Unchanged.
type Event struct {
	Kind EventKind
	ID   string
}

// Diff compares two snapshots. Exactly one added volume with nothing removed
// is an insertion; exactly one removed volume with nothing added is a
// removal; anything else, including simultaneous changes, is Unchanged.
func Diff(prev, cur volume.Snapshot) Event {
	var added, removed []string
	for _, id := range cur.IDs() {
		if !prev.Has(id) {
			added = append(added, id)
		}
	}
	for _, id := range prev.IDs() {
		if !cur.Has(id) {
			removed = append(removed, id)
		}
	}
	switch {
	case len(added) == 1 && len(removed) == 0:
		return Event{Kind: Inserted, ID: added[0]}
	case len(added) == 0 && len(removed) == 1:
		return Event{Kind: Removed, ID: removed[0]}
	default:
		return Event{Kind: Unchanged}
	}
}
