package launcher

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"drivesync/internal/job"
)

var (
	// ErrPromptTimeout means nobody answered the first question in time.
	ErrPromptTimeout = errors.New("prompt timed out")
	// ErrDeclined means the user dismissed the prompt.
	ErrDeclined = errors.New("prompt declined")
)

// Prompter asks for a Selection on a line-oriented terminal.
type Prompter struct {
	In  io.Reader
	Out io.Writer
	// Timeout bounds the wait for the first answer only; once the user
	// starts answering the prompt waits indefinitely.
	Timeout     time.Duration
	DefaultDays int
	Clock       clockwork.Clock
}

type lineResult struct {
	line string
	err  error
}

// Ask shows info and reads the selection.
func (p *Prompter) Ask(ctx context.Context, info DriveInfo) (Selection, error) {
	clock := p.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	lines := make(chan lineResult)
	done := make(chan struct{})
	defer close(done)
	go func() {
		scanner := bufio.NewScanner(p.In)
		for scanner.Scan() {
			select {
			case lines <- lineResult{line: strings.TrimSpace(scanner.Text())}:
			case <-done:
				return
			}
		}
		err := scanner.Err()
		if err == nil {
			err = io.EOF
		}
		select {
		case lines <- lineResult{err: err}:
		case <-done:
		}
	}()

	var timeout <-chan time.Time
	if p.Timeout > 0 {
		timeout = clock.After(p.Timeout)
	}
	read := func() (string, error) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timeout:
			return "", ErrPromptTimeout
		case r := <-lines:
			timeout = nil
			return r.line, r.err
		}
	}

	fmt.Fprintf(p.Out, "%s  %s\n", info.Title(), info.Space())
	fmt.Fprintln(p.Out, subjectMenu())

	var sel Selection
	for {
		fmt.Fprint(p.Out, "Subjects (numbers or names, \"all\"; empty to close): ")
		answer, err := read()
		if err != nil {
			return Selection{}, promptErr(err)
		}
		if answer == "" {
			return Selection{}, ErrDeclined
		}
		mask, err := ParseSubjects(answer)
		if err != nil {
			fmt.Fprintln(p.Out, err)
			continue
		}
		if mask.Count() == 0 {
			fmt.Fprintln(p.Out, ErrNothingSelected)
			continue
		}
		sel.Subjects = mask
		break
	}

	for {
		fmt.Fprint(p.Out, "Mode [1] sync  [2] low I/O  [3] recent files  [4] date range (default 1): ")
		answer, err := read()
		if err != nil {
			return Selection{}, promptErr(err)
		}
		mode, err := parseModeAnswer(answer)
		if err != nil {
			fmt.Fprintln(p.Out, err)
			continue
		}
		sel.Mode = mode
		break
	}

	switch sel.Mode {
	case job.CopyRecent:
		days := p.DefaultDays
		if days <= 0 {
			days = 7
		}
		for {
			fmt.Fprintf(p.Out, "Days back (default %d): ", days)
			answer, err := read()
			if err != nil {
				return Selection{}, promptErr(err)
			}
			if answer == "" {
				break
			}
			n, convErr := strconv.Atoi(answer)
			if convErr != nil || n <= 0 {
				fmt.Fprintln(p.Out, "enter a positive number of days")
				continue
			}
			days = n
			break
		}
		sel.RecentDays = days
	case job.CopyDateRange:
		from, err := p.askDate(read, "From date YYYYMMDD (default today): ")
		if err != nil {
			return Selection{}, err
		}
		to, err := p.askDate(read, "To date YYYYMMDD (default today): ")
		if err != nil {
			return Selection{}, err
		}
		sel.From, sel.To = from, to
	}

	fmt.Fprint(p.Out, "Delete existing files on the drive first? [y/N]: ")
	answer, err := read()
	if err != nil {
		return Selection{}, promptErr(err)
	}
	sel.DeleteExisting = isYes(answer)
	return sel, nil
}

func (p *Prompter) askDate(read func() (string, error), question string) (time.Time, error) {
	for {
		fmt.Fprint(p.Out, question)
		answer, err := read()
		if err != nil {
			return time.Time{}, promptErr(err)
		}
		if answer == "" {
			return time.Time{}, nil
		}
		t, err := ParseDate(answer, time.Local)
		if err != nil {
			fmt.Fprintln(p.Out, err)
			continue
		}
		return t, nil
	}
}

// ParseSubjects reads a comma or space separated list of subject numbers
// (1-based), keys or labels. "all" selects every subject.
func ParseSubjects(value string) (job.Mask, error) {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == ';'
	})
	var mask job.Mask
	for _, field := range fields {
		if strings.EqualFold(field, "all") {
			mask = job.AllMask
			continue
		}
		if n, err := strconv.Atoi(field); err == nil {
			if n < 1 || n > job.SubjectCount {
				return 0, fmt.Errorf("subject number %d out of range 1-%d", n, job.SubjectCount)
			}
			mask = mask.With(job.Subject(n - 1))
			continue
		}
		s, err := job.ParseSubject(field)
		if err != nil {
			return 0, err
		}
		mask = mask.With(s)
	}
	return mask, nil
}

func parseModeAnswer(answer string) (job.Mode, error) {
	if answer == "" {
		return job.SyncDefault, nil
	}
	if n, err := strconv.Atoi(answer); err == nil {
		if !job.Mode(n).Valid() {
			return 0, fmt.Errorf("mode %d out of range 1-4", n)
		}
		return job.Mode(n), nil
	}
	return job.ParseMode(answer)
}

func subjectMenu() string {
	var b strings.Builder
	for i, s := range job.AllSubjects() {
		if i > 0 {
			b.WriteString("  ")
		}
		fmt.Fprintf(&b, "%d) %s", i+1, s.Label())
	}
	return b.String()
}

func isYes(answer string) bool {
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func promptErr(err error) error {
	if errors.Is(err, io.EOF) {
		return ErrDeclined
	}
	return err
}
