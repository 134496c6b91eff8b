package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"drivesync/internal/failure"
	"drivesync/internal/job"
	"drivesync/internal/testsupport"
	"drivesync/internal/volume"
)

func TestLauncherFlagsSpawnWorker(t *testing.T) {
	env := newCLIEnv(t, testsupport.NewConfig(t))

	_, _, err := env.run(t, "launcher", "--subjects", "math,english", "--delete", "--", "/media/stick/")
	if err != nil {
		t.Fatalf("launcher: %v", err)
	}
	calls := env.spawner.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected one spawn, got %v", calls)
	}
	want := []string{"worker", "/media/stick", "0", "1", "1", "0", "0", "0", "0", "0", "0", "0", "0", "1", "True", ""}
	if !reflect.DeepEqual(calls[0], want) {
		t.Fatalf("spawn tokens\n got %q\nwant %q", calls[0], want)
	}
}

func TestLauncherRangeModeCarriesDates(t *testing.T) {
	env := newCLIEnv(t, testsupport.NewConfig(t))

	_, _, err := env.run(t, "launcher", "--all", "--mode", "range", "--from", "20240101", "--to", "2024-02-01", "--", "/media/stick")
	if err != nil {
		t.Fatalf("launcher: %v", err)
	}
	calls := env.spawner.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected one spawn, got %v", calls)
	}
	tokens := calls[0]
	if tokens[13] != "4" {
		t.Fatalf("expected range mode code 4, got %q", tokens[13])
	}
	if tokens[15] != "/from_date=20240101 /to_date=20240201" {
		t.Fatalf("unexpected extra options %q", tokens[15])
	}
}

func TestLauncherWithoutSelectionOrTerminalIsMalformed(t *testing.T) {
	env := newCLIEnv(t, testsupport.NewConfig(t))

	_, _, err := env.run(t, "launcher", "--", "/media/stick")
	if failure.ExitCode(err) != failure.ExitMalformed {
		t.Fatalf("expected malformed exit, got %v", err)
	}
	if len(env.spawner.Calls()) != 0 {
		t.Fatal("nothing should be spawned")
	}
}

func TestLauncherRejectsBadDrive(t *testing.T) {
	env := newCLIEnv(t, testsupport.NewConfig(t))

	_, _, err := env.run(t, "launcher", "--all", "--", "not-a-drive")
	if !errors.Is(err, failure.ErrMalformedArgs) {
		t.Fatalf("expected malformed args, got %v", err)
	}
}

func TestLauncherAutostartRespectsConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Launcher.AutoStart = false
	env := newCLIEnv(t, cfg)
	if _, _, err := env.run(t, "launcher", "--autostart"); err != nil {
		t.Fatalf("autostart disabled: %v", err)
	}
	if len(env.spawner.Calls()) != 0 {
		t.Fatal("monitor must not start when auto_start is off")
	}

	cfg.Launcher.AutoStart = true
	env = newCLIEnv(t, cfg)
	out, _, err := env.run(t, "launcher", "--autostart")
	if err != nil {
		t.Fatalf("autostart enabled: %v", err)
	}
	if calls := env.spawner.Calls(); len(calls) != 1 || !reflect.DeepEqual(calls[0], []string{"monitor"}) {
		t.Fatalf("expected monitor spawn, got %v", calls)
	}
	if !strings.Contains(out, "Drive monitor started") {
		t.Fatalf("unexpected output %q", out)
	}
}

func workerArgs(drive string, mode job.Mode, subjects ...job.Subject) []string {
	args := []string{"worker", "--plain", "--", drive}
	mask := job.MaskOf(subjects...)
	for _, s := range job.AllSubjects() {
		if mask.Has(s) {
			args = append(args, "1")
		} else {
			args = append(args, "0")
		}
	}
	return append(args, string(rune('0'+int(mode))), "False", "")
}

func TestWorkerRunsToolPerSubjectAndRecordsHistory(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "calls.log")
	cfg := testsupport.NewConfig(t,
		testsupport.WithSourceFolders(),
		testsupport.WithToolScript(`echo "$@" >> "`+logPath+`"`),
	)
	env := newCLIEnv(t, cfg)

	out, _, err := env.run(t, workerArgs("/media/stick", job.SyncDefault, job.Math, job.Physics)...)
	if err != nil {
		t.Fatalf("worker: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Syncing 2 subject(s) to STICK") {
		t.Fatalf("missing header in output:\n%s", out)
	}
	if !strings.Contains(out, "Synced 2 subject(s)") {
		t.Fatalf("missing summary in output:\n%s", out)
	}

	calls, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read tool calls: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(calls)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two tool invocations, got %q", lines)
	}

	store := testsupport.MustOpenHistory(t, cfg)
	runs, err := store.Recent(t.Context(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 1 || runs[0].Phase != "completed" || runs[0].VolumeLabel != "STICK" {
		t.Fatalf("unexpected history %+v", runs)
	}
	if runs[0].Subjects != job.MaskOf(job.Math, job.Physics) {
		t.Fatalf("unexpected subjects %s", runs[0].Subjects)
	}
}

func TestWorkerFailedSubjectExitsPartial(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithSourceFolders(),
		testsupport.WithToolScript("exit 1"),
	)
	env := newCLIEnv(t, cfg)

	out, _, err := env.run(t, workerArgs("/media/stick", job.SyncLowIO, job.English)...)
	if failure.ExitCode(err) != failure.ExitPartial {
		t.Fatalf("expected partial exit, got %v", err)
	}
	if !strings.Contains(out, "failed subject(s): english") {
		t.Fatalf("missing failure summary:\n%s", out)
	}
}

func TestWorkerAbortOnFailureExitsAborted(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "calls.log")
	cfg := testsupport.NewConfig(t,
		testsupport.WithSourceFolders(),
		testsupport.WithToolScript(`echo "$@" >> "`+logPath+`"; exit 1`),
	)
	cfg.Tool.AbortOnFailure = true
	env := newCLIEnv(t, cfg)

	out, _, err := env.run(t, workerArgs("/media/stick", job.SyncDefault, job.Math, job.English)...)
	if failure.ExitCode(err) != failure.ExitAborted {
		t.Fatalf("expected aborted exit, got %v", err)
	}
	if !strings.Contains(out, "Aborted after failed subject(s): math") {
		t.Fatalf("missing failure summary:\n%s", out)
	}
	calls, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read tool calls: %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(string(calls)), "\n"); len(lines) != 1 {
		t.Fatalf("expected the run to stop after one invocation, got %q", lines)
	}
}

func TestWorkerMissingToolExitsToolMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSourceFolders())
	cfg.Tool.Binary = filepath.Join(testsupport.BaseDir(cfg), "absent", "fcp")
	env := newCLIEnv(t, cfg)

	_, _, err := env.run(t, workerArgs("/media/stick", job.SyncDefault, job.Math)...)
	if failure.ExitCode(err) != failure.ExitToolMissing {
		t.Fatalf("expected tool missing exit, got %v", err)
	}
}

func TestWorkerRejectsShortHandoff(t *testing.T) {
	env := newCLIEnv(t, testsupport.NewConfig(t))

	_, _, err := env.run(t, "worker", "--", "/media/stick", "1", "0")
	if failure.ExitCode(err) != failure.ExitMalformed {
		t.Fatalf("expected malformed exit, got %v", err)
	}
}

func TestMonitorSpawnsLauncherForInsertedDrive(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Monitor.PollIntervalMS = 5
	env := newCLIEnv(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	env.enumerator = &scriptedEnumerator{
		snaps:  []volume.Snapshot{letters("C:"), letters("C:", "E:")},
		cancel: cancel,
	}

	if _, _, err := env.runContext(ctx, t, "monitor"); err != nil {
		t.Fatalf("monitor: %v", err)
	}
	calls := env.spawner.Calls()
	want := [][]string{{"launcher", "E:"}}
	if !reflect.DeepEqual(calls, want) {
		t.Fatalf("spawn tokens\n got %q\nwant %q", calls, want)
	}
}

func TestMonitorIgnoresAmbiguousInsertion(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Monitor.PollIntervalMS = 5
	env := newCLIEnv(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	env.enumerator = &scriptedEnumerator{
		snaps:  []volume.Snapshot{letters("C:"), letters("C:", "E:", "F:"), letters("C:")},
		cancel: cancel,
	}

	if _, _, err := env.runContext(ctx, t, "monitor"); err != nil {
		t.Fatalf("monitor: %v", err)
	}
	if calls := env.spawner.Calls(); len(calls) != 0 {
		t.Fatalf("expected no spawn for a two-volume insertion, got %q", calls)
	}
}
