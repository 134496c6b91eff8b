package logging

import (
	"log/slog"
	"slices"
	"time"
)

const (
	// FieldComponent names the emitting package or subsystem.
	FieldComponent = "component"
	// FieldEventType is a stable machine-readable name for the event.
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to check next.
	FieldErrorHint = "error_hint"
	// FieldImpact describes the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldRole is the drivesync role (monitor, launcher, worker).
	FieldRole = "role"
	// FieldDrive is the drive letter or mountpoint being served.
	FieldDrive = "drive"
	// FieldSubject is the subject currently being copied.
	FieldSubject = "subject"
	// FieldRunID correlates the lines of one worker run.
	FieldRunID = "run_id"
)

const (
	defaultHint   = "see the role log under logging.log_dir"
	defaultImpact = "the run continues"
)

// Attr is the attribute type accepted by every helper in this package.
type Attr = slog.Attr

func String(key, value string) Attr                 { return slog.String(key, value) }
func Int(key string, value int) Attr                { return slog.Int(key, value) }
func Int64(key string, value int64) Attr            { return slog.Int64(key, value) }
func Uint64(key string, value uint64) Attr          { return slog.Uint64(key, value) }
func Bool(key string, value bool) Attr              { return slog.Bool(key, value) }
func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }
func Strings(key string, values []string) Attr      { return slog.Any(key, values) }
func Any(key string, value any) Attr                { return slog.Any(key, value) }

// Error records err under "error"; a nil error is written as "<nil>".
func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// Args adapts attrs to the ...any parameter of slog.Logger methods.
func Args(attrs ...Attr) []any {
	out := make([]any, len(attrs))
	for i, attr := range attrs {
		out[i] = attr
	}
	return out
}

// NewNop returns a logger that drops every record.
func NewNop() *slog.Logger { return slog.New(discardHandler{}) }

// NewComponentLogger tags logger with component. A nil logger yields NewNop.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		return NewNop()
	}
	return logger.With(slog.String(FieldComponent, component))
}

// WarnWithContext logs a warning that always carries event_type, error_hint
// and impact; explicit attrs win over the defaults.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = withDefaults(attrs,
		slog.String(FieldEventType, eventType),
		slog.String(FieldErrorHint, defaultHint),
		slog.String(FieldImpact, defaultImpact),
	)
	logger.Warn(msg, Args(attrs...)...)
}

// ErrorWithContext logs an error that always carries event_type and
// error_hint.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = withDefaults(attrs,
		slog.String(FieldEventType, eventType),
		slog.String(FieldErrorHint, defaultHint),
	)
	logger.Error(msg, Args(attrs...)...)
}

func withDefaults(attrs []Attr, defaults ...Attr) []Attr {
	for _, def := range defaults {
		if !slices.ContainsFunc(attrs, func(a Attr) bool { return a.Key == def.Key }) {
			attrs = append(attrs, def)
		}
	}
	return attrs
}
