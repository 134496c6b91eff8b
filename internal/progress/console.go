package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"

	"drivesync/internal/worker"
)

// Console draws worker progress on a terminal. When the output is not a
// terminal it writes one line per phase change or subject instead.
type Console struct {
	out   io.Writer
	fancy bool

	mu      sync.Mutex
	pw      progress.Writer
	tracker *progress.Tracker
	last    worker.Progress
	stopped bool
}

// NewConsole returns a console sink writing to out. fancy selects the
// animated bar.
func NewConsole(out io.Writer, fancy bool) *Console {
	return &Console{out: out, fancy: fancy}
}

// Update implements Sink.
func (c *Console) Update(p worker.Progress) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	if c.fancy {
		c.updateBar(p)
	} else {
		c.updateLine(p)
	}
	c.last = p
}

// Stop finishes rendering. It is safe to call more than once.
func (c *Console) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.stopped = true
	if c.pw == nil {
		return
	}
	c.pw.Stop()
	waitFor(func() bool { return !c.pw.IsRenderInProgress() })
}

// waitFor polls cond for up to two seconds.
func waitFor(cond func() bool) {
	deadline := time.Now().Add(2 * time.Second)
	for !cond() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
}

func (c *Console) updateBar(p worker.Progress) {
	if c.pw == nil {
		pw := progress.NewWriter()
		pw.SetOutputWriter(c.out)
		pw.SetAutoStop(false)
		pw.SetTrackerLength(30)
		pw.SetMessageLength(28)
		pw.SetStyle(progress.StyleDefault)
		pw.SetUpdateFrequency(100 * time.Millisecond)
		pw.Style().Visibility.ETA = false
		pw.Style().Visibility.Value = false
		c.tracker = &progress.Tracker{Message: describe(p), Total: 100, Units: progress.UnitsDefault}
		pw.AppendTracker(c.tracker)
		c.pw = pw
		go pw.Render()
		waitFor(func() bool { return pw.IsRenderInProgress() })
	}

	c.tracker.UpdateMessage(describe(p))
	switch p.Phase {
	case worker.Completed:
		c.tracker.SetValue(100)
		c.tracker.MarkAsDone()
	case worker.Cancelled, worker.Failed:
		c.tracker.MarkAsErrored()
	default:
		c.tracker.SetValue(int64(clamp(p.Percent)))
	}
}

func (c *Console) updateLine(p worker.Progress) {
	if p.Phase == c.last.Phase && p.Completed == c.last.Completed {
		return
	}
	fmt.Fprintf(c.out, "%3d%%  %s\n", clamp(p.Percent), describe(p))
}

func describe(p worker.Progress) string {
	switch p.Phase {
	case worker.Running:
		if p.Completed == 0 {
			return fmt.Sprintf("Syncing 0/%d", p.Total)
		}
		return fmt.Sprintf("Synced %s (%d/%d)", p.Subject.Label(), p.Completed, p.Total)
	case worker.Preparing:
		return "Preparing"
	case worker.Completed:
		if n := len(p.FailedSubjects); n > 0 {
			return fmt.Sprintf("Done, %d failed: %s", n, labels(p.FailedSubjects))
		}
		return "Done"
	case worker.Cancelled:
		return "Cancelled"
	case worker.Failed:
		if p.Err != nil {
			return "Failed: " + p.Err.Error()
		}
		return "Failed"
	default:
		return p.Phase.String()
	}
}
