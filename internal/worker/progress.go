package worker

import (
	"time"

	"drivesync/internal/job"
)

// Phase is the worker's lifecycle state.
type Phase int

const (
	Idle Phase = iota
	Preparing
	Running
	Completed
	Cancelled
	Failed
)

var phaseNames = [...]string{"idle", "preparing", "running", "completed", "cancelled", "failed"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// Terminal reports whether no transition may leave p.
func (p Phase) Terminal() bool {
	return p == Completed || p == Cancelled || p == Failed
}

// Progress is one observable state of a run. Subject is the last subject
// finished and is meaningful only while Completed > 0.
type Progress struct {
	Phase          Phase
	Percent        int
	Subject        job.Subject
	Completed      int
	Total          int
	FailedSubjects []job.Subject
	Err            error
}

// Result summarises a finished run.
type Result struct {
	Phase          Phase
	Completed      int
	Total          int
	FailedSubjects []job.Subject
	Err            error
	Started        time.Time
	Finished       time.Time
}

// Duration is the wall time between start and finish.
func (r Result) Duration() time.Duration {
	if r.Finished.IsZero() {
		return 0
	}
	return r.Finished.Sub(r.Started)
}

// percent is floor(done/total*100); an empty run counts as complete.
func percent(done, total int) int {
	if total <= 0 {
		return 100
	}
	return done * 100 / total
}
