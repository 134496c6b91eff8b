package logging

import (
	"context"
	"log/slog"
	"strings"
)

type contextKey int

const (
	roleKey contextKey = iota
	driveKey
	runIDKey
)

// WithRole tags ctx with the active role.
func WithRole(ctx context.Context, role string) context.Context {
	return withValue(ctx, roleKey, role)
}

// WithDrive tags ctx with the drive being served.
func WithDrive(ctx context.Context, drive string) context.Context {
	return withValue(ctx, driveKey, drive)
}

// WithRunID tags ctx with a worker run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	return withValue(ctx, runIDKey, id)
}

func withValue(ctx context.Context, key contextKey, value string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringFrom(ctx context.Context, key contextKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	value, ok := ctx.Value(key).(string)
	return value, ok && value != ""
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	fields := make([]slog.Attr, 0, 3)
	if role, ok := stringFrom(ctx, roleKey); ok {
		fields = append(fields, slog.String(FieldRole, role))
	}
	if drive, ok := stringFrom(ctx, driveKey); ok {
		fields = append(fields, slog.String(FieldDrive, drive))
	}
	if id, ok := stringFrom(ctx, runIDKey); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	return fields
}

// WithContext returns a logger augmented with the fields carried by ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
