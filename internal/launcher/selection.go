package launcher

import (
	"errors"
	"fmt"
	"time"

	"drivesync/internal/job"
)

const dateLayout = "20060102"

// ErrNothingSelected is returned for a selection without subjects.
var ErrNothingSelected = errors.New("no subjects selected")

// Selection is the user's choice before it becomes a job.
type Selection struct {
	Subjects       job.Mask
	Mode           job.Mode
	DeleteExisting bool
	// RecentDays is used by CopyRecent.
	RecentDays int
	// From and To bound CopyDateRange. A zero From means today; a zero To
	// means today.
	From time.Time
	To   time.Time
}

// Job converts s into the job for drive. today anchors date clamping.
func (s Selection) Job(drive string, today time.Time) (job.SyncJob, error) {
	if s.Subjects.Count() == 0 {
		return job.SyncJob{}, ErrNothingSelected
	}
	mode := s.Mode
	if mode == 0 {
		mode = job.SyncDefault
	}
	j := job.SyncJob{
		Drive:          drive,
		Subjects:       s.Subjects,
		Mode:           mode,
		DeleteExisting: s.DeleteExisting,
	}
	switch mode {
	case job.CopyRecent:
		if s.RecentDays <= 0 {
			return job.SyncJob{}, fmt.Errorf("recent copy needs a positive day count, got %d", s.RecentDays)
		}
		j.ExtraOptions = RecentOption(s.RecentDays)
	case job.CopyDateRange:
		from, to := ClampRange(s.From, s.To, today)
		j.ExtraOptions = RangeOption(from, to)
	}
	if err := j.Validate(); err != nil {
		return job.SyncJob{}, err
	}
	return j, nil
}

// RecentOption selects files modified in the last days days.
func RecentOption(days int) string {
	return fmt.Sprintf("/from_date=-%dD", days)
}

// RangeOption selects files modified between from and to inclusive.
func RangeOption(from, to time.Time) string {
	return fmt.Sprintf("/from_date=%s /to_date=%s", from.Format(dateLayout), to.Format(dateLayout))
}

// ClampRange keeps both dates at or before today and from at or before to.
// Zero dates default to today.
func ClampRange(from, to, today time.Time) (time.Time, time.Time) {
	today = day(today)
	from, to = day(from), day(to)
	if from.IsZero() {
		from = today
	}
	if to.IsZero() || to.After(today) {
		to = today
	}
	if from.After(today) {
		from = today
	}
	if from.After(to) {
		from = to
	}
	return from, to
}

// ParseDate reads YYYYMMDD or YYYY-MM-DD in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	for _, layout := range []string{dateLayout, time.DateOnly} {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, want YYYYMMDD", value)
}

func day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
