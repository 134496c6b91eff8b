package drivemon_test

import (
	"testing"

	"pgregory.net/rapid"

	"drivesync/internal/drivemon"
	"drivesync/internal/volume"
)

func snap(ids ...string) volume.Snapshot {
	vols := make([]volume.Volume, len(ids))
	for i, id := range ids {
		vols[i] = volume.Volume{ID: id, Mountpoint: id + `\`}
	}
	return volume.NewSnapshot(vols...)
}

func TestDiffScenarios(t *testing.T) {
	cases := []struct {
		name string
		prev volume.Snapshot
		cur  volume.Snapshot
		want drivemon.Event
	}{
		{"single insert", snap("C:", "D:"), snap("C:", "D:", "E:"), drivemon.Event{Kind: drivemon.Inserted, ID: "E:"}},
		{"single removal", snap("C:", "D:", "E:"), snap("C:", "D:"), drivemon.Event{Kind: drivemon.Removed, ID: "E:"}},
		{"two inserted", snap("C:"), snap("C:", "E:", "F:"), drivemon.Event{Kind: drivemon.Unchanged}},
		{"swap", snap("C:", "E:"), snap("C:", "F:"), drivemon.Event{Kind: drivemon.Unchanged}},
		{"identical", snap("C:", "D:"), snap("C:", "D:"), drivemon.Event{Kind: drivemon.Unchanged}},
		{"from empty", snap(), snap("E:"), drivemon.Event{Kind: drivemon.Inserted, ID: "E:"}},
		{"to empty", snap("E:"), snap(), drivemon.Event{Kind: drivemon.Removed, ID: "E:"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := drivemon.Diff(tc.prev, tc.cur); got != tc.want {
				t.Fatalf("Diff = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestDiffProperty(t *testing.T) {
	letters := []string{"C:", "D:", "E:", "F:", "G:", "H:", "I:", "J:"}
	rapid.Check(t, func(t *rapid.T) {
		prevIDs := rapid.SliceOfDistinct(rapid.SampledFrom(letters), rapid.ID[string]).Draw(t, "prev")
		curIDs := rapid.SliceOfDistinct(rapid.SampledFrom(letters), rapid.ID[string]).Draw(t, "cur")
		prev, cur := snap(prevIDs...), snap(curIDs...)

		var added, removed []string
		for _, id := range curIDs {
			if !prev.Has(id) {
				added = append(added, id)
			}
		}
		for _, id := range prevIDs {
			if !cur.Has(id) {
				removed = append(removed, id)
			}
		}

		got := drivemon.Diff(prev, cur)
		switch {
		case len(added) == 1 && len(removed) == 0:
			if got.Kind != drivemon.Inserted || got.ID != added[0] {
				t.Fatalf("expected insertion of %s, got %+v", added[0], got)
			}
		case len(added) == 0 && len(removed) == 1:
			if got.Kind != drivemon.Removed || got.ID != removed[0] {
				t.Fatalf("expected removal of %s, got %+v", removed[0], got)
			}
		default:
			if got.Kind != drivemon.Unchanged || got.ID != "" {
				t.Fatalf("expected unchanged, got %+v (added=%v removed=%v)", got, added, removed)
			}
		}
	})
}

func TestEventKindString(t *testing.T) {
	if drivemon.Inserted.String() != "inserted" || drivemon.Removed.String() != "removed" || drivemon.Unchanged.String() != "unchanged" {
		t.Fatal("unexpected event kind names")
	}
}
