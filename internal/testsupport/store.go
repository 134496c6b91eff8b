package testsupport

import (
	"context"
	"testing"

	"drivesync/internal/config"
	"drivesync/internal/history"
	"drivesync/internal/job"
	"drivesync/internal/worker"
)

// MustOpenHistory opens a history.Store for tests and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// RecordRun inserts a finished run for tests.
func RecordRun(t testing.TB, store *history.Store, j job.SyncJob, result worker.Result) string {
	t.Helper()

	id, err := store.Begin(context.Background(), j, "TEST")
	if err != nil {
		t.Fatalf("store.Begin: %v", err)
	}
	if err := store.Finish(context.Background(), id, result); err != nil {
		t.Fatalf("store.Finish: %v", err)
	}
	return id
}
