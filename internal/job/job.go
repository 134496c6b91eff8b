package job

import (
	"fmt"
	"strings"
)

// Subject is one of the fixed content categories a job can select.
// The numeric value is the bit position in a Mask and the processing order.
type Subject int

const (
	Chinese Subject = iota
	Math
	English
	Physics
	Chemistry
	Biology
	Politics
	History
	Geography
	Technology
	Materials
)

// SubjectCount is the size of the fixed subject enumeration.
const SubjectCount = 11

var subjectKeys = [SubjectCount]string{
	"chinese",
	"math",
	"english",
	"physics",
	"chemistry",
	"biology",
	"politics",
	"history",
	"geography",
	"technology",
	"materials",
}

var subjectLabels = [SubjectCount]string{
	"Chinese",
	"Math",
	"English",
	"Physics",
	"Chemistry",
	"Biology",
	"Politics",
	"History",
	"Geography",
	"Technology",
	"Materials",
}

// AllSubjects returns every subject in enumeration order.
func AllSubjects() []Subject {
	out := make([]Subject, SubjectCount)
	for i := range out {
		out[i] = Subject(i)
	}
	return out
}

// Valid reports whether s is inside the fixed enumeration.
func (s Subject) Valid() bool {
	return s >= 0 && int(s) < SubjectCount
}

// Key returns the stable lower-case identifier used in configuration.
func (s Subject) Key() string {
	if !s.Valid() {
		return fmt.Sprintf("subject(%d)", int(s))
	}
	return subjectKeys[s]
}

// Label returns the display name.
func (s Subject) Label() string {
	if !s.Valid() {
		return fmt.Sprintf("Subject(%d)", int(s))
	}
	return subjectLabels[s]
}

func (s Subject) String() string { return s.Label() }

// ParseSubject resolves a configuration key or label, case-insensitively.
func ParseSubject(value string) (Subject, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for i, key := range subjectKeys {
		if value == key || value == strings.ToLower(subjectLabels[i]) {
			return Subject(i), nil
		}
	}
	return 0, fmt.Errorf("unknown subject %q", value)
}

// Mask is a set of subjects; bit i corresponds to Subject(i).
type Mask uint16

// AllMask selects every subject.
const AllMask Mask = 1<<SubjectCount - 1

// MaskOf builds a mask from the given subjects.
func MaskOf(subjects ...Subject) Mask {
	var m Mask
	for _, s := range subjects {
		if s.Valid() {
			m |= 1 << uint(s)
		}
	}
	return m
}

// Has reports whether s is selected.
func (m Mask) Has(s Subject) bool {
	return s.Valid() && m&(1<<uint(s)) != 0
}

// With returns a copy of m that also selects s.
func (m Mask) With(s Subject) Mask {
	return m | MaskOf(s)
}

// Valid reports whether m only uses the low SubjectCount bits.
func (m Mask) Valid() bool {
	return m&^AllMask == 0
}

// Subjects lists the selected subjects in enumeration order, independent of
// the order in which they were selected.
func (m Mask) Subjects() []Subject {
	out := make([]Subject, 0, SubjectCount)
	for i := 0; i < SubjectCount; i++ {
		if m.Has(Subject(i)) {
			out = append(out, Subject(i))
		}
	}
	return out
}

// Count returns the number of selected subjects.
func (m Mask) Count() int {
	return len(m.Subjects())
}

func (m Mask) String() string {
	subjects := m.Subjects()
	if len(subjects) == 0 {
		return "none"
	}
	names := make([]string, len(subjects))
	for i, s := range subjects {
		names[i] = s.Key()
	}
	return strings.Join(names, ",")
}

// Mode is the synchronization strategy.
type Mode int

const (
	SyncDefault   Mode = 1
	SyncLowIO     Mode = 2
	CopyRecent    Mode = 3
	CopyDateRange Mode = 4
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m >= SyncDefault && m <= CopyDateRange
}

func (m Mode) String() string {
	switch m {
	case SyncDefault:
		return "sync"
	case SyncLowIO:
		return "sync-low-io"
	case CopyRecent:
		return "copy-recent"
	case CopyDateRange:
		return "copy-range"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode accepts the names produced by String.
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "sync", "default":
		return SyncDefault, nil
	case "sync-low-io", "low-io", "lowio":
		return SyncLowIO, nil
	case "copy-recent", "recent":
		return CopyRecent, nil
	case "copy-range", "range", "date-range":
		return CopyDateRange, nil
	default:
		return 0, fmt.Errorf("unknown mode %q", value)
	}
}

// SyncJob describes one unit of work for the worker role. It is created once
// by the launcher and consumed once by the worker.
type SyncJob struct {
	Drive          string
	Subjects       Mask
	Mode           Mode
	DeleteExisting bool
	ExtraOptions   string
	BufferSizeMB   int
	Concurrency    int
}

// Validate checks the invariants every well-formed job satisfies.
func (j SyncJob) Validate() error {
	if strings.TrimSpace(j.Drive) == "" {
		return fmt.Errorf("drive is required")
	}
	if !j.Subjects.Valid() {
		return fmt.Errorf("subject mask %#x exceeds %d subjects", uint16(j.Subjects), SubjectCount)
	}
	if !j.Mode.Valid() {
		return fmt.Errorf("invalid mode %d", int(j.Mode))
	}
	if j.BufferSizeMB < 0 {
		return fmt.Errorf("buffer size must not be negative")
	}
	if j.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative")
	}
	return nil
}
