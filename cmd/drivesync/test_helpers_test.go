package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"drivesync/internal/config"
	"drivesync/internal/volume"
)

type cliEnv struct {
	cfg         *config.Config
	configPath  string
	spawner     *recordingSpawner
	volumes     volume.Snapshot
	enumerator  volume.Enumerator
	interactive bool
}

func newCLIEnv(t *testing.T, cfg *config.Config) *cliEnv {
	t.Helper()
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &cliEnv{
		cfg:        cfg,
		configPath: path,
		spawner:    &recordingSpawner{},
		volumes: volume.NewSnapshot(volume.Volume{
			ID:         "/media/stick",
			Kind:       volume.Removable,
			Mountpoint: "/media/stick",
			Label:      "STICK",
			Fstype:     "vfat",
		}),
	}
}

func (e *cliEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return e.runContext(context.Background(), t, args...)
}

func (e *cliEnv) runContext(parent context.Context, t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd, ctx := buildRootCommand()
	ctx.spawner = e.spawner
	ctx.enumerator = e.enumerator
	if ctx.enumerator == nil {
		ctx.enumerator = staticEnumerator{snap: e.volumes}
	}
	ctx.usage = func(context.Context, string) (uint64, uint64, error) {
		return 3 << 30, 16 << 30, nil
	}
	interactive := e.interactive
	ctx.stdinIsTTY = func() bool { return interactive }

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := cmd.ExecuteContext(parent)
	return stdout.String(), stderr.String(), err
}

type staticEnumerator struct {
	snap volume.Snapshot
	err  error
}

func (s staticEnumerator) Snapshot(context.Context) (volume.Snapshot, error) { return s.snap, s.err }

// scriptedEnumerator returns each snapshot in turn. The poll after the last
// one cancels the run, so every handler for the script has finished by then.
type scriptedEnumerator struct {
	mu     sync.Mutex
	snaps  []volume.Snapshot
	calls  int
	cancel context.CancelFunc
}

func (s *scriptedEnumerator) Snapshot(context.Context) (volume.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	if i >= len(s.snaps) {
		s.cancel()
		return s.snaps[len(s.snaps)-1], nil
	}
	return s.snaps[i], nil
}

func letters(ids ...string) volume.Snapshot {
	vols := make([]volume.Volume, 0, len(ids))
	for _, id := range ids {
		vols = append(vols, volume.Volume{ID: id, Kind: volume.Removable, Mountpoint: id + `\`})
	}
	return volume.NewSnapshot(vols...)
}

type recordingSpawner struct {
	mu    sync.Mutex
	calls [][]string
}

func (s *recordingSpawner) Spawn(_ context.Context, tokens []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, append([]string(nil), tokens...))
	return nil
}

func (s *recordingSpawner) Calls() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]string(nil), s.calls...)
}
