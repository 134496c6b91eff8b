package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"drivesync/internal/config"
)

const (
	maxLineBytes    = 1024 * 1024
	defaultInterval = 250 * time.Millisecond
)

// Roles lists the roles that write their own log file.
var Roles = []string{"monitor", "launcher", "worker"}

// Path returns the log file of role under the configured log directory.
func Path(cfg *config.Config, role string) string {
	return filepath.Join(cfg.Paths.LogDir, role+".log")
}

// Last returns up to n trailing lines of path and the offset of the end of
// the file. A missing file yields no lines and offset 0.
func Last(path string, n int) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, 0, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return nil, 0, fmt.Errorf("log path %q is a directory", path)
	}
	if n <= 0 {
		return nil, info.Size(), nil
	}

	ring := make([]string, n)
	count, next := 0, 0
	offset, err := scanLines(file, func(line string) {
		ring[next] = line
		next = (next + 1) % n
		if count < n {
			count++
		}
	})
	if err != nil {
		return nil, 0, err
	}

	lines := make([]string, 0, count)
	start := 0
	if count == n {
		start = next
	}
	for i := range count {
		lines = append(lines, ring[(start+i)%n])
	}
	return lines, offset, nil
}

// Follower emits lines appended to Path after Offset until its context ends.
type Follower struct {
	Path     string
	Offset   int64
	Interval time.Duration
	Clock    clockwork.Clock
}

// Run polls until ctx is cancelled, which is not reported as an error.
func (f *Follower) Run(ctx context.Context, emit func(line string)) error {
	clock := f.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	interval := f.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := f.poll(emit); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
		}
	}
}

func (f *Follower) poll(emit func(string)) error {
	file, err := os.Open(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			f.Offset = 0
			return nil
		}
		return fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat log file: %w", err)
	}
	if info.Size() < f.Offset {
		f.Offset = 0
	}
	if info.Size() == f.Offset {
		return nil
	}
	if _, err := file.Seek(f.Offset, io.SeekStart); err != nil {
		return fmt.Errorf("seek log file: %w", err)
	}
	end, err := scanLines(file, emit)
	if err != nil {
		return err
	}
	f.Offset = end
	return nil
}

// scanLines feeds every line from the current position to fn and returns
// the offset reached.
func scanLines(file *os.File, fn func(string)) (int64, error) {
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		fn(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("read log file: %w", err)
	}
	offset, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fmt.Errorf("determine log offset: %w", err)
	}
	return offset, nil
}
