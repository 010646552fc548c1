package dqswitch

import (
	"context"
	"time"
)

type Layout int

type KeyCode uint16

type DeviceID string

type KeyEvent struct {
	Code   KeyCode
	Device DeviceID
	Down   bool
}

type FocusEvent struct {
	// ProcessName is empty when the focused window has no resolvable owner.
	ProcessName string
}

type LayoutSwitcher interface {
	SwitchTo(layout Layout) error
	CurrentLayout() (Layout, error)
}

type FocusWatcher interface {
	Watch(ctx context.Context, out chan<- FocusEvent) error
}

type KeyEventSource interface {
	Events() <-chan KeyEvent
	Err() error
}

type Entry struct {
	Time   time.Time
	Target Layout
	Reason string
	Err    string
}

type Journal interface {
	Record(entry Entry) error
}
