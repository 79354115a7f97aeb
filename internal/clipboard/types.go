package clipboard

import (
	"github.com/brencon/clipsy/internal/classify"
)

// EventType tags monitor events for listeners.
type EventType string

const (
	// EventCaptured fires when a new entry lands in history.
	EventCaptured EventType = "captured"
	// EventBumped fires when a re-copy refreshed an existing entry.
	EventBumped EventType = "bumped"
	// EventError fires when a capture attempt failed.
	EventError EventType = "error"
)

// Event is a monitor notification.
type Event struct {
	Type    EventType
	ID      int64
	Kind    classify.Kind
	Preview string
	Err     error
}
