package widget

import "sync"

// Level is the kind of a notification.
type Level string

// Notification levels.
const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a transient message shown to the visitor.
type Notification struct {
	Level   Level
	Message string
}

// Notifier shows notifications to the visitor.
type Notifier interface {
	Flash(n Notification)
}

// Notifications collects notifications for rendering with the widget.
// It is safe for concurrent use; the zero value is empty.
type Notifications struct {
	mu   sync.Mutex
	list []Notification
}

// Flash appends n.
func (ns *Notifications) Flash(n Notification) {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	ns.list = append(ns.list, n)
}

// Snapshot returns a copy of the collected notifications.
func (ns *Notifications) Snapshot() []Notification {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	return append([]Notification(nil), ns.list...)
}
