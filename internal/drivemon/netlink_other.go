//go:build !linux

package drivemon

import (
	"context"
	"log/slog"
)

// StartWakeup is unavailable off Linux; the monitor relies on polling.
func StartWakeup(context.Context, *slog.Logger) (<-chan struct{}, func()) {
	return nil, func() {}
}
