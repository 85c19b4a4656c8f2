package models

import "time"

// Journal event types.
const (
	EventState       = "STATE"
	EventSync        = "SYNC"
	EventDecision    = "DECISION"
	EventHardware    = "HARDWARE"
	EventCaptureErr  = "CAPTURE_ERROR"
	EventConfigError = "CONFIG_ERROR"
	EventFatal       = "FATAL"
)

// EventTypes lists every journal event type in a stable order.
var EventTypes = []string{
	EventState, EventSync, EventDecision, EventHardware,
	EventCaptureErr, EventConfigError, EventFatal,
}

// ValidEventType reports whether typ is one of EventTypes.
func ValidEventType(typ string) bool {
	for _, t := range EventTypes {
		if t == typ {
			return true
		}
	}
	return false
}

// CycleEvent is a single journal entry.
type CycleEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // STATE | SYNC | DECISION | HARDWARE | CAPTURE_ERROR | CONFIG_ERROR | FATAL
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
