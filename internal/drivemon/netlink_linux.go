//go:build linux

package drivemon

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pilebones/go-udev/netlink"

	"drivesync/internal/logging"
)

// udevWakeup nudges the monitor when the kernel announces block device
// changes, so insertions are picked up without waiting for the next tick.
type udevWakeup struct {
	logger *slog.Logger
	nudges chan struct{}

	mu      sync.Mutex
	conn    *netlink.UEventConn
	quit    chan struct{}
	running bool
}

// StartWakeup connects to the udev netlink socket and returns a channel that
// receives a value on every block add/remove/change event, plus a stop
// function. Connection failure is not fatal: the returned channel is nil and
// the monitor falls back to plain polling.
func StartWakeup(ctx context.Context, logger *slog.Logger) (<-chan struct{}, func()) {
	w := &udevWakeup{
		logger: logging.NewComponentLogger(logger, "udev-wakeup"),
		nudges: make(chan struct{}, 1),
	}
	if !w.start(ctx) {
		return nil, func() {}
	}
	return w.nudges, w.stop
}

func (w *udevWakeup) start(ctx context.Context) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		logging.WarnWithContext(w.logger, "failed to connect to netlink socket; relying on polling", "netlink_connect_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "netlink access may be restricted in this environment"),
			logging.String(logging.FieldImpact, "insertions are detected at the next poll tick"),
		)
		return false
	}

	w.conn = conn
	w.quit = make(chan struct{})
	w.running = true

	quit := w.quit
	go w.loop(ctx, conn, quit)

	w.logger.Debug("udev wake-up listener started",
		logging.String(logging.FieldEventType, "netlink_started"),
	)
	return true
}

func (w *udevWakeup) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	close(w.quit)
	w.quit = nil
	if w.conn != nil {
		_ = w.conn.Close()
		w.conn = nil
	}
	w.running = false
}

func (w *udevWakeup) loop(ctx context.Context, conn *netlink.UEventConn, quit <-chan struct{}) {
	queue := make(chan netlink.UEvent)
	errs := make(chan error)
	monitorQuit := conn.Monitor(queue, errs, blockMatcher())

	for {
		select {
		case <-ctx.Done():
			close(monitorQuit)
			return
		case <-quit:
			close(monitorQuit)
			return
		case uevent := <-queue:
			w.logger.Debug("block device event",
				logging.String("action", string(uevent.Action)),
				logging.String("kobj", uevent.KObj),
			)
			w.nudge()
		case err := <-errs:
			logging.WarnWithContext(w.logger, "netlink monitor error", "netlink_monitor_error",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check kernel netlink subsystem"),
				logging.String(logging.FieldImpact, "insertions may wait for the next poll tick"),
			)
		}
	}
}

// nudge never blocks; one pending wake-up is enough to trigger a poll.
func (w *udevWakeup) nudge() {
	select {
	case w.nudges <- struct{}{}:
	default:
	}
}

// blockMatcher matches SUBSYSTEM=block with ACTION add, remove or change.
func blockMatcher() netlink.Matcher {
	action := "add|remove|change"
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM": "block",
		},
	})
	return rules
}
