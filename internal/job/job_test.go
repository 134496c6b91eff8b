package job_test

import (
	"testing"

	"drivesync/internal/job"
)

func TestMaskSubjectsFollowEnumerationOrder(t *testing.T) {
	mask := job.MaskOf(job.Materials, job.Chinese, job.Physics)
	got := mask.Subjects()
	want := []job.Subject{job.Chinese, job.Physics, job.Materials}
	if len(got) != len(want) {
		t.Fatalf("unexpected subjects %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("subject %d: got %v want %v", i, got[i], want[i])
		}
	}
	if mask.Count() != 3 {
		t.Fatalf("expected count 3, got %d", mask.Count())
	}
	if mask.String() != "chinese,physics,materials" {
		t.Fatalf("unexpected string %q", mask.String())
	}
}

func TestMaskBitLayout(t *testing.T) {
	if job.MaskOf(job.Chinese, job.Math) != 0b00000000011 {
		t.Fatal("expected first two subjects in the low bits")
	}
	if job.AllMask.Count() != job.SubjectCount {
		t.Fatalf("expected all subjects, got %d", job.AllMask.Count())
	}
	if job.Mask(1 << job.SubjectCount).Valid() {
		t.Fatal("expected out-of-range bit to be invalid")
	}
}

func TestParseSubjectAcceptsKeysAndLabels(t *testing.T) {
	for _, s := range job.AllSubjects() {
		byKey, err := job.ParseSubject(s.Key())
		if err != nil || byKey != s {
			t.Fatalf("ParseSubject(%q) = %v, %v", s.Key(), byKey, err)
		}
		byLabel, err := job.ParseSubject(" " + s.Label() + " ")
		if err != nil || byLabel != s {
			t.Fatalf("ParseSubject(%q) = %v, %v", s.Label(), byLabel, err)
		}
	}
	if _, err := job.ParseSubject("music"); err == nil {
		t.Fatal("expected unknown subject error")
	}
}

func TestParseModeRoundTrip(t *testing.T) {
	for _, mode := range []job.Mode{job.SyncDefault, job.SyncLowIO, job.CopyRecent, job.CopyDateRange} {
		parsed, err := job.ParseMode(mode.String())
		if err != nil {
			t.Fatalf("ParseMode(%q): %v", mode.String(), err)
		}
		if parsed != mode {
			t.Fatalf("got %v want %v", parsed, mode)
		}
	}
	if _, err := job.ParseMode("mirror"); err == nil {
		t.Fatal("expected unknown mode error")
	}
}

func TestValidateRejectsBadJobs(t *testing.T) {
	good := job.SyncJob{Drive: "E:", Subjects: job.AllMask, Mode: job.SyncDefault}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected valid job, got %v", err)
	}
	bad := []job.SyncJob{
		{Subjects: job.AllMask, Mode: job.SyncDefault},
		{Drive: "E:", Subjects: job.Mask(1 << 12), Mode: job.SyncDefault},
		{Drive: "E:", Mode: job.Mode(9)},
		{Drive: "E:", Mode: job.SyncDefault, BufferSizeMB: -1},
		{Drive: "E:", Mode: job.SyncDefault, Concurrency: -2},
	}
	for i, j := range bad {
		if err := j.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}
