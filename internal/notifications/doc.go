// Package notifications delivers completion notices.
//
// New assembles a Notifier from the [notifications] config section: a
// desktop notice (D-Bus on Linux) and an ntfy push when a topic is set.
// With both disabled the returned Notifier does nothing. Callers depend
// only on the Notifier interface and treat delivery as best effort.
package notifications
