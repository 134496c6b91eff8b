//go:build !windows

package volume

import (
	"os"
	"path/filepath"
	"testing"
)

func TestClassifyDeviceReadsRemovableFlag(t *testing.T) {
	root := t.TempDir()
	disk := filepath.Join(root, "devices", "sdb")
	part := filepath.Join(disk, "sdb1")
	if err := os.MkdirAll(part, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(disk, "removable"), []byte("1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	block := filepath.Join(root, "block")
	if err := os.MkdirAll(block, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(part, filepath.Join(block, "sdb1")); err != nil {
		t.Fatal(err)
	}

	prev := sysBlockDir
	sysBlockDir = block
	t.Cleanup(func() { sysBlockDir = prev })

	if kind := classifyDevice("/dev/sdb1", "/srv/data"); kind != Removable {
		t.Fatalf("expected removable, got %v", kind)
	}
	if kind := classifyDevice("/dev/sda1", "/"); kind != Fixed {
		t.Fatalf("expected fixed, got %v", kind)
	}
	if kind := classifyDevice("/dev/sdc1", "/run/media/user/STICK"); kind != Removable {
		t.Fatalf("expected mount-root fallback to removable, got %v", kind)
	}
}

func TestUnescapeLabel(t *testing.T) {
	cases := map[string]string{
		`MY\x20STICK`: "MY STICK",
		"PLAIN":       "PLAIN",
		`bad\xZZ`:     `bad\xZZ`,
	}
	for in, want := range cases {
		if got := unescapeLabel(in); got != want {
			t.Fatalf("unescapeLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
