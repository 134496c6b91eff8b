package fastcopy

import (
	"path/filepath"
	"strconv"
	"strings"

	"drivesync/internal/job"
)

// Verb is FastCopy's /cmd value.
type Verb string

const (
	VerbSync   Verb = "sync"
	VerbDelete Verb = "delete"
)

// Command is one FastCopy invocation.
type Command struct {
	Verb         Verb
	BufferSizeMB int
	Concurrency  int
	Mode         job.Mode
	Extra        string
	Source       string
	Dest         string
}

// SyncCommand mirrors source into dest using the job's tuning and mode.
func SyncCommand(j job.SyncJob, source, dest string) Command {
	return Command{
		Verb:         VerbSync,
		BufferSizeMB: j.BufferSizeMB,
		Concurrency:  j.Concurrency,
		Mode:         j.Mode,
		Extra:        strings.TrimSpace(j.ExtraOptions),
		Source:       source,
		Dest:         dest,
	}
}

// DeleteCommand removes dest and everything below it.
func DeleteCommand(j job.SyncJob, dest string) Command {
	return Command{
		Verb:        VerbDelete,
		Concurrency: j.Concurrency,
		Dest:        dest,
	}
}

// Destination is the folder on the drive that receives the subject
// folders: <drive>\<base name of the source root>\.
func Destination(drive, sourceRoot string) string {
	base := filepath.Base(filepath.Clean(sourceRoot))
	drive = strings.TrimRight(drive, `\/`)
	if strings.HasPrefix(drive, "/") {
		return filepath.Join(drive, base) + string(filepath.Separator)
	}
	return drive + `\` + base + `\`
}

// flags returns the option switches shared by both renderings.
func (c Command) flags() []string {
	out := []string{"/cmd=" + string(c.Verb)}
	if c.Verb == VerbDelete {
		out = append(out, "/no_confirm_del")
	}
	if c.BufferSizeMB > 0 {
		out = append(out, "/bufsize="+strconv.Itoa(c.BufferSizeMB))
	}
	if c.Concurrency > 0 {
		out = append(out, "/force_start="+strconv.Itoa(c.Concurrency))
	}
	out = append(out, "/log=FALSE")
	switch c.Mode {
	case job.SyncDefault:
		out = append(out, "/speed=full")
	case job.SyncLowIO:
		out = append(out, "/low_io")
	}
	return out
}

// Args renders the invocation as separate arguments.
func (c Command) Args() []string {
	args := c.flags()
	args = append(args, strings.Fields(c.Extra)...)
	if c.Verb == VerbDelete {
		return append(args, c.Dest)
	}
	return append(args, windowsPath(c.Source), "/to="+c.Dest)
}

// CommandLine renders the invocation the way FastCopy expects it on
// Windows: quoted paths, with /to="dest" quoted after the equals sign.
func (c Command) CommandLine(binary string) string {
	parts := []string{quote(binary)}
	parts = append(parts, c.flags()...)
	if c.Extra != "" {
		parts = append(parts, c.Extra)
	}
	if c.Verb == VerbDelete {
		parts = append(parts, quote(c.Dest))
	} else {
		parts = append(parts, quote(windowsPath(c.Source)), "/to="+quote(c.Dest))
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	return `"` + s + `"`
}

// windowsPath converts forward slashes in drive-letter paths only; POSIX
// paths are left alone.
func windowsPath(p string) string {
	if len(p) >= 2 && p[1] == ':' {
		return strings.ReplaceAll(p, "/", `\`)
	}
	return p
}
