//go:build !linux && !windows

package notifications

import (
	"context"
	"errors"
	"log/slog"
)

var errDesktopUnavailable = errors.New("desktop notifications not available on this platform")

type desktop struct{}

func newDesktop(string, *slog.Logger) Notifier { return desktop{} }

func (desktop) Notify(context.Context, Message) error { return errDesktopUnavailable }
