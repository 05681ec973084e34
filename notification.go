package vtengine

import "github.com/coreterm/vtengine/ansicode"

// NotificationPayload carries the decoded fields of an OSC 99 desktop notification
// sequence (iTerm2/Kitty style). The decoder does not reassemble multi-part
// notifications: DesktopNotification is invoked once per OSC 99 sequence, with
// Done taken from that sequence's d= key (true when absent).
type NotificationPayload = ansicode.NotificationPayload

// NotificationProvider displays desktop notifications requested via OSC 99.
// Notify may return a non-empty string to be written back to the PTY, used
// to answer capability queries (PayloadType "?") or report notification state.
type NotificationProvider interface {
	Notify(payload *NotificationPayload) string
}

// NoopNotification discards all notifications and never produces a reply.
type NoopNotification struct{}

func (NoopNotification) Notify(payload *NotificationPayload) string { return "" }

var _ NotificationProvider = NoopNotification{}

// SetNotificationProvider sets the notification provider at runtime.
func (t *Terminal) SetNotificationProvider(p NotificationProvider) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.notificationProvider = p
}

// NotificationProvider returns the current notification provider.
func (t *Terminal) NotificationProvider() NotificationProvider {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.notificationProvider
}

// DesktopNotification delivers a decoded OSC 99 payload to the notification provider.
func (t *Terminal) DesktopNotification(payload *NotificationPayload) {
	if t.middleware != nil && t.middleware.DesktopNotification != nil {
		t.middleware.DesktopNotification(payload, t.desktopNotificationInternal)
		return
	}
	t.desktopNotificationInternal(payload)
}

func (t *Terminal) desktopNotificationInternal(payload *NotificationPayload) {
	t.mu.RLock()
	provider := t.notificationProvider
	t.mu.RUnlock()

	if provider == nil {
		return
	}

	reply := provider.Notify(payload)
	if reply != "" {
		t.writeResponseString(reply)
	}
}
