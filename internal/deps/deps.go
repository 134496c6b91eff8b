package deps

import (
	"fmt"
	"os"
	"strings"

	"drivesync/internal/config"
	"drivesync/internal/failure"
	"drivesync/internal/job"
)

// Requirement defines an external dependency drivesync relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the binaries the configured roles will execute.
func Requirements(cfg *config.Config) []Requirement {
	reqs := []Requirement{{
		Name:        "FastCopy",
		Command:     cfg.Tool.Binary,
		Description: "Copies subject folders onto the drive",
	}}
	if len(cfg.Launcher.Terminal) > 0 {
		reqs = append(reqs, Requirement{
			Name:        "Terminal",
			Command:     cfg.Launcher.Terminal[0],
			Description: "Opens a window for the launcher and worker roles",
			Optional:    true,
		})
	}
	return reqs
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		resolved, err := ResolveTool(cmd)
		if err != nil {
			status.Detail = err.Error()
			results = append(results, status)
			continue
		}
		status.Command = resolved
		status.Available = true
		results = append(results, status)
	}
	return results
}

// RequireTool resolves the copy tool or returns an error marked
// failure.ErrToolMissing.
func RequireTool(binary string) (string, error) {
	resolved, err := ResolveTool(binary)
	if err != nil {
		return "", failure.Wrap(failure.ErrToolMissing, "deps", "resolve", "copy tool unavailable", err)
	}
	return resolved, nil
}

// CheckSources reports whether the source root and every subject folder
// exist. Missing subject folders are optional: the copy tool simply finds
// nothing to copy.
func CheckSources(cfg *config.Config) []Status {
	results := []Status{dirStatus("Source root", cfg.Sources.Root, false)}
	for _, subject := range job.AllSubjects() {
		results = append(results, dirStatus(subject.Label(), cfg.SourceFolder(subject), true))
	}
	return results
}

func dirStatus(name, path string, optional bool) Status {
	status := Status{Name: name, Command: path, Optional: optional}
	info, err := os.Stat(path)
	switch {
	case err != nil:
		status.Detail = fmt.Sprintf("folder %q not found", path)
	case !info.IsDir():
		status.Detail = fmt.Sprintf("%q is not a folder", path)
	default:
		status.Available = true
	}
	return status
}
