package notifications

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"drivesync/internal/config"
	"drivesync/internal/logging"
)

const (
	userAgent      = "drivesync/1"
	defaultTimeout = 10 * time.Second
	fallbackLabel  = "USB drive"
)

// Message is one notice. Tags and Priority are only used by ntfy.
type Message struct {
	Title    string
	Body     string
	Icon     string
	Tags     []string
	Priority string
}

// Notifier delivers a Message.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// New builds the notifier described by cfg.Notifications.
func New(cfg *config.Config, logger *slog.Logger) Notifier {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "notifications")
	if cfg == nil {
		return Noop{}
	}
	settings := cfg.Notifications
	timeout := time.Duration(settings.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var targets []Notifier
	if settings.Desktop {
		targets = append(targets, newDesktop(settings.Icon, logger))
	}
	if topic := strings.TrimSpace(settings.NtfyTopic); topic != "" {
		targets = append(targets, NewNtfy(topic, timeout))
	}
	switch len(targets) {
	case 0:
		return Noop{}
	case 1:
		return targets[0]
	default:
		return Fanout(targets)
	}
}

// CompletionMessage is the notice shown after a successful sync of drive.
func CompletionMessage(label, drive string) Message {
	label = strings.TrimSpace(label)
	if label == "" {
		label = fallbackLabel
	}
	body := label
	if drive = strings.TrimSpace(drive); drive != "" {
		body = label + " (" + drive + ")"
	}
	return Message{
		Title: "Sync complete",
		Body:  body,
		Tags:  []string{"drivesync", "sync", "completed"},
	}
}

// Fanout sends every message to each notifier and joins their errors.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, msg Message) error {
	var errs []error
	for _, n := range f {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Noop discards every message.
type Noop struct{}

func (Noop) Notify(context.Context, Message) error { return nil }
