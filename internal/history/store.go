package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"drivesync/internal/config"
	"drivesync/internal/job"
	"drivesync/internal/worker"
)

const runColumns = `id, drive, volume_label, subjects, mode, delete_existing,
    started_at, finished_at, phase, failed_subjects, error_message`

// Run is one recorded worker run.
type Run struct {
	ID             string
	Drive          string
	VolumeLabel    string
	Subjects       job.Mask
	Mode           job.Mode
	DeleteExisting bool
	StartedAt      time.Time
	FinishedAt     time.Time
	Phase          string
	FailedSubjects job.Mask
	ErrorMessage   string
}

// Interrupted reports whether the run never recorded a terminal phase.
func (r Run) Interrupted() bool { return r.Phase == "" }

// Duration is zero for interrupted runs.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Store persists runs in SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open creates or opens the history database configured by cfg.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.HistoryPath())
}

// OpenPath opens the database at path, creating the schema when needed.
func OpenPath(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, now: func() time.Time { return time.Now().UTC() }}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Begin records the start of a run and returns its id.
func (s *Store) Begin(ctx context.Context, j job.SyncJob, label string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, drive, volume_label, subjects, mode, delete_existing, started_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id,
		j.Drive,
		nullableString(label),
		int64(j.Subjects),
		int64(j.Mode),
		boolToInt(j.DeleteExisting),
		s.now().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// Finish stores the terminal result of run id.
func (s *Store) Finish(ctx context.Context, id string, result worker.Result) error {
	finished := result.Finished
	if finished.IsZero() {
		finished = s.now()
	}
	errText := ""
	if result.Err != nil {
		errText = result.Err.Error()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, phase = ?, failed_subjects = ?, error_message = ?
         WHERE id = ?`,
		finished.UTC().Format(time.RFC3339Nano),
		result.Phase.String(),
		int64(job.MaskOf(result.FailedSubjects...)),
		nullableString(errText),
		id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run %s: %w", id, sql.ErrNoRows)
	}
	return nil
}

// Get fetches one run. It returns nil when the id is unknown.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Prune deletes runs that started before cutoff and returns how many were
// removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoff.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run        Run
		label      sql.NullString
		subjects   int64
		mode       int64
		deleteFlag int64
		started    string
		finished   sql.NullString
		phase      sql.NullString
		failed     int64
		errText    sql.NullString
	)
	if err := row.Scan(&run.ID, &run.Drive, &label, &subjects, &mode, &deleteFlag,
		&started, &finished, &phase, &failed, &errText); err != nil {
		return nil, err
	}
	run.VolumeLabel = label.String
	run.Subjects = job.Mask(subjects)
	run.Mode = job.Mode(mode)
	run.DeleteExisting = deleteFlag != 0
	run.StartedAt = parseTime(started)
	if finished.Valid {
		run.FinishedAt = parseTime(finished.String)
	}
	run.Phase = phase.String
	run.FailedSubjects = job.Mask(failed)
	run.ErrorMessage = errText.String
	return &run, nil
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
