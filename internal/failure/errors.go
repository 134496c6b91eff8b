package failure

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTransient     = errors.New("transient failure")
	ErrDeviceQuery   = errors.New("device query failed")
	ErrMalformedArgs = errors.New("malformed arguments")
	ErrToolMissing   = errors.New("external tool unavailable")
	ErrToolFailed    = errors.New("external tool reported failure")
	ErrAborted       = errors.New("run aborted after tool failure")
	ErrCancelled     = errors.New("cancelled by user")
	ErrRedirected    = errors.New("redirected to running instance")
	ErrConfiguration = errors.New("configuration error")
)

// Exit codes returned by every role. Callers that spawn roles may inspect
// them; zero covers success, user cancellation, and instance redirects.
const (
	ExitOK            = 0
	ExitUnknown       = 1
	ExitMalformed     = 2
	ExitDeviceQuery   = 3
	ExitToolMissing   = 4
	ExitPartial       = 5
	ExitConfiguration = 6
	ExitAborted       = 7
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ExitCode maps an error returned by a role to its process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrCancelled), errors.Is(err, ErrRedirected):
		return ExitOK
	case errors.Is(err, ErrMalformedArgs):
		return ExitMalformed
	case errors.Is(err, ErrDeviceQuery):
		return ExitDeviceQuery
	case errors.Is(err, ErrToolMissing):
		return ExitToolMissing
	case errors.Is(err, ErrAborted):
		return ExitAborted
	case errors.Is(err, ErrToolFailed):
		return ExitPartial
	case errors.Is(err, ErrConfiguration):
		return ExitConfiguration
	default:
		return ExitUnknown
	}
}

// Benign reports whether err represents an intentional, successful outcome
// that should not be printed as an error.
func Benign(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, ErrRedirected)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "failure"
	}
	return strings.Join(parts, ": ")
}
