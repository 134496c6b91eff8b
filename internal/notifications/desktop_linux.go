//go:build linux

package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"

	"drivesync/internal/logging"
)

const (
	notifyService       = "org.freedesktop.Notifications"
	notifyPath          = "/org/freedesktop/Notifications"
	notifyMethod        = notifyService + ".Notify"
	notifyAppName       = "drivesync"
	notifyExpireDefault = int32(-1)
)

// desktop posts notices to the session bus notification daemon.
type desktop struct {
	icon   string
	logger *slog.Logger

	mu   sync.Mutex
	conn *dbus.Conn
}

func newDesktop(icon string, logger *slog.Logger) Notifier {
	return &desktop{icon: icon, logger: logger}
}

func (d *desktop) Notify(ctx context.Context, msg Message) error {
	conn, err := d.connect()
	if err != nil {
		return err
	}
	icon := msg.Icon
	if icon == "" {
		icon = d.icon
	}
	obj := conn.Object(notifyService, dbus.ObjectPath(notifyPath))
	call := obj.CallWithContext(ctx, notifyMethod, 0,
		notifyAppName,
		uint32(0),
		icon,
		msg.Title,
		msg.Body,
		[]string{},
		map[string]dbus.Variant{},
		notifyExpireDefault,
	)
	if call.Err != nil {
		return fmt.Errorf("desktop notify: %w", call.Err)
	}
	var id uint32
	if err := call.Store(&id); err == nil {
		d.logger.Debug("desktop notification posted", logging.Uint64("id", uint64(id)))
	}
	return nil
}

func (d *desktop) connect() (*dbus.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn != nil && d.conn.Connected() {
		return d.conn, nil
	}
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	d.conn = conn
	return conn, nil
}
