package handoff

import (
	"fmt"
	"strconv"
	"strings"

	"drivesync/internal/failure"
	"drivesync/internal/job"
)

// Token counts of the two handoff schemas. Token 0 is always the identity of
// the receiving role.
const (
	DriveTokens = 2
	JobTokens   = 2 + job.SubjectCount + 3
)

const (
	deleteTrue  = "True"
	deleteFalse = "False"
)

// Tuning carries the tool hints that are not transported on argv. The worker
// supplies them from its own configuration when decoding.
type Tuning struct {
	BufferSizeMB int
	Concurrency  int
}

// DriveRequest is the decoded letter-only handoff.
type DriveRequest struct {
	Identity string
	Drive    string
}

// EncodeDrive builds the launcher handoff.
func EncodeDrive(identity, drive string) ([]string, error) {
	if strings.TrimSpace(identity) == "" {
		return nil, malformed("encode drive", "identity is empty", nil)
	}
	if err := ValidateDrive(drive); err != nil {
		return nil, malformed("encode drive", "", err)
	}
	return []string{identity, drive}, nil
}

// DecodeDrive parses a letter-only handoff.
func DecodeDrive(tokens []string) (DriveRequest, error) {
	if len(tokens) != DriveTokens {
		return DriveRequest{}, malformed("decode drive", fmt.Sprintf("expected %d tokens, got %d", DriveTokens, len(tokens)), nil)
	}
	drive := NormalizeDrive(tokens[1])
	if err := ValidateDrive(drive); err != nil {
		return DriveRequest{}, malformed("decode drive", "", err)
	}
	return DriveRequest{Identity: tokens[0], Drive: drive}, nil
}

// EncodeJob builds the worker handoff:
// [identity, drive, b1..b11, mode, "True"|"False", extra].
func EncodeJob(identity string, j job.SyncJob) ([]string, error) {
	if strings.TrimSpace(identity) == "" {
		return nil, malformed("encode job", "identity is empty", nil)
	}
	if err := j.Validate(); err != nil {
		return nil, malformed("encode job", "", err)
	}
	if err := ValidateDrive(j.Drive); err != nil {
		return nil, malformed("encode job", "", err)
	}
	tokens := make([]string, 0, JobTokens)
	tokens = append(tokens, identity, j.Drive)
	for _, subject := range job.AllSubjects() {
		if j.Subjects.Has(subject) {
			tokens = append(tokens, "1")
		} else {
			tokens = append(tokens, "0")
		}
	}
	tokens = append(tokens, strconv.Itoa(int(j.Mode)))
	if j.DeleteExisting {
		tokens = append(tokens, deleteTrue)
	} else {
		tokens = append(tokens, deleteFalse)
	}
	tokens = append(tokens, j.ExtraOptions)
	return tokens, nil
}

// DecodeJob parses a worker handoff. Every position is validated; the first
// violation is returned as failure.ErrMalformedArgs.
func DecodeJob(tokens []string, tuning Tuning) (job.SyncJob, error) {
	if len(tokens) != JobTokens {
		return job.SyncJob{}, malformed("decode job", fmt.Sprintf("expected %d tokens, got %d", JobTokens, len(tokens)), nil)
	}
	drive := tokens[1]
	if err := ValidateDrive(drive); err != nil {
		return job.SyncJob{}, malformed("decode job", "", err)
	}

	var mask job.Mask
	flags := tokens[2 : 2+job.SubjectCount]
	for i, flag := range flags {
		switch flag {
		case "1":
			mask = mask.With(job.Subject(i))
		case "0":
		default:
			return job.SyncJob{}, malformed("decode job", fmt.Sprintf("subject flag %d is %q, want 0 or 1", i+1, flag), nil)
		}
	}

	rest := tokens[2+job.SubjectCount:]
	code, err := strconv.Atoi(rest[0])
	if err != nil || !job.Mode(code).Valid() {
		return job.SyncJob{}, malformed("decode job", fmt.Sprintf("mode %q out of range", rest[0]), nil)
	}

	var deleteExisting bool
	switch rest[1] {
	case deleteTrue:
		deleteExisting = true
	case deleteFalse:
	default:
		return job.SyncJob{}, malformed("decode job", fmt.Sprintf("delete flag %q, want True or False", rest[1]), nil)
	}

	decoded := job.SyncJob{
		Drive:          drive,
		Subjects:       mask,
		Mode:           job.Mode(code),
		DeleteExisting: deleteExisting,
		ExtraOptions:   rest[2],
		BufferSizeMB:   tuning.BufferSizeMB,
		Concurrency:    tuning.Concurrency,
	}
	if err := decoded.Validate(); err != nil {
		return job.SyncJob{}, malformed("decode job", "", err)
	}
	return decoded, nil
}

func malformed(operation, message string, err error) error {
	return failure.Wrap(failure.ErrMalformedArgs, "handoff", operation, message, err)
}
