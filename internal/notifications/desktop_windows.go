//go:build windows

package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/go-toast/toast"

	"drivesync/internal/logging"
)

const toastAppID = "drivesync"

// desktop shows notices as Windows toasts.
type desktop struct {
	icon   string
	logger *slog.Logger
	push   func(n *toast.Notification) error
}

func newDesktop(icon string, logger *slog.Logger) Notifier {
	return &desktop{
		icon:   icon,
		logger: logger,
		push:   func(n *toast.Notification) error { return n.Push() },
	}
}

func (d *desktop) Notify(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n := toastFor(msg, d.icon)
	if err := d.push(&n); err != nil {
		return fmt.Errorf("desktop toast: %w", err)
	}
	d.logger.Debug("desktop toast shown", logging.String("title", n.Title))
	return nil
}

// toastFor maps msg onto a short toast. The toast host needs an absolute
// icon path, so relative icons are dropped.
func toastFor(msg Message, fallbackIcon string) toast.Notification {
	icon := msg.Icon
	if icon == "" {
		icon = fallbackIcon
	}
	if !filepath.IsAbs(icon) {
		icon = ""
	}
	return toast.Notification{
		AppID:    toastAppID,
		Title:    msg.Title,
		Message:  msg.Body,
		Icon:     icon,
		Audio:    toast.Default,
		Duration: toast.Short,
	}
}
